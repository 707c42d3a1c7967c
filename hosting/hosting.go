// Package hosting resolves game servers run on EC2. A common setup for small
// private servers is an instance that gets started on demand and stopped when
// everyone logs off; the client only has the instance id and needs an address.
package hosting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// DefaultPort is the port servers listen on unless configured otherwise.
const DefaultPort = 25565

var ErrNoPublicAddress = errors.New("instance has no public IP address")

type Manager struct {
	client *ec2.Client
	logger *slog.Logger
}

func NewManager(ctx context.Context, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Manager{client: ec2.NewFromConfig(cfg), logger: logger}, nil
}

// Address returns the host:port of a running instance, starting it first if
// it is stopped. It blocks until the instance reports running and has a
// public address.
func (m *Manager) Address(ctx context.Context, instanceID string) (string, error) {
	inst, err := m.describe(ctx, instanceID)
	if err != nil {
		return "", err
	}

	switch inst.State.Name {
	case types.InstanceStateNameRunning:
	case types.InstanceStateNameStopped, types.InstanceStateNameStopping:
		m.logger.Info("starting instance", "instance", instanceID)
		if err := m.start(ctx, instanceID); err != nil {
			return "", err
		}
		if inst, err = m.describe(ctx, instanceID); err != nil {
			return "", err
		}
	default:
		// Pending or shutting down; wait for it to settle.
		if inst, err = m.awaitRunning(ctx, instanceID); err != nil {
			return "", err
		}
	}

	return addressOf(inst)
}

func (m *Manager) describe(ctx context.Context, instanceID string) (types.Instance, error) {
	out, err := m.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.Instance{}, fmt.Errorf("describe %s: %w", instanceID, err)
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if aws.ToString(inst.InstanceId) == instanceID {
				return inst, nil
			}
		}
	}
	return types.Instance{}, fmt.Errorf("instance %s not found", instanceID)
}

func (m *Manager) start(ctx context.Context, instanceID string) error {
	_, err := m.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", instanceID, err)
	}
	_, err = m.awaitRunning(ctx, instanceID)
	return err
}

func (m *Manager) awaitRunning(ctx context.Context, instanceID string) (types.Instance, error) {
	waiter := ec2.NewInstanceRunningWaiter(m.client)
	out, err := waiter.WaitForOutput(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	}, 5*time.Minute)
	if err != nil {
		return types.Instance{}, fmt.Errorf("wait for %s: %w", instanceID, err)
	}
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			if aws.ToString(inst.InstanceId) == instanceID {
				return inst, nil
			}
		}
	}
	return types.Instance{}, fmt.Errorf("instance %s not found", instanceID)
}

// addressOf extracts the dialable address from an instance description.
func addressOf(inst types.Instance) (string, error) {
	ip := aws.ToString(inst.PublicIpAddress)
	if ip == "" {
		ip = aws.ToString(inst.PublicDnsName)
	}
	if ip == "" {
		return "", ErrNoPublicAddress
	}
	return fmt.Sprintf("%s:%d", ip, DefaultPort), nil
}
