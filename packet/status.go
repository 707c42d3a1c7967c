package packet

import (
	"github.com/gardenstoney/mc-client/event"
	"github.com/gardenstoney/mc-client/game"
)

type StatusRequest struct{}

func (p StatusRequest) ID() int32 {
	return 0x00
}

func (p StatusRequest) Encode(w *Writer) error {
	return nil
}

type PingRequest struct {
	Timestamp int64
}

func (p PingRequest) ID() int32 {
	return 0x01
}

func (p PingRequest) Encode(w *Writer) error {
	return w.Long(p.Timestamp)
}

// StatusResponse carries the server list JSON blob.
type StatusResponse struct {
	Response string
}

func (p *StatusResponse) ID() int32 {
	return 0x00
}

func (p *StatusResponse) Decode(r *Reader) (err error) {
	p.Response, err = r.String()
	return
}

func (p *StatusResponse) Handle(s *game.Session) error {
	s.Emit(event.StatusReceived{JSON: p.Response})
	return nil
}

type PingResponse struct {
	Timestamp int64
}

func (p *PingResponse) ID() int32 {
	return 0x01
}

func (p *PingResponse) Decode(r *Reader) (err error) {
	p.Timestamp, err = r.Long()
	return
}

func (p *PingResponse) Handle(s *game.Session) error {
	s.Emit(event.Pong{Timestamp: p.Timestamp})
	return nil
}
