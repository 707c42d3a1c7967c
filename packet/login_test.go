package packet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gardenstoney/mc-client/game"
)

func TestLoginStartEncode(t *testing.T) {
	u := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")

	body, err := Marshal(LoginStart{
		Name:       "Steve",
		PlayerUUID: Optional[uuid.UUID]{Exists: true, Item: u},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := []byte{0x00, 0x05, 'S', 't', 'e', 'v', 'e', 0x01}
	want = append(want, u[:]...)
	if !bytes.Equal(body, want) {
		t.Errorf("frame body: got %x, want %x", body, want)
	}

	// Without a UUID the optional collapses to a single false byte.
	body, err = Marshal(LoginStart{Name: "Steve"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want = []byte{0x00, 0x05, 'S', 't', 'e', 'v', 'e', 0x00}
	if !bytes.Equal(body, want) {
		t.Errorf("frame body: got %x, want %x", body, want)
	}
}

func TestLoginSuccess(t *testing.T) {
	s := game.NewSession()
	u := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")

	w := NewWriter()
	w.UUID(u)
	w.String("Steve")
	w.VarInt(1) // one profile property
	w.String("textures")
	w.String("base64blob")
	w.Boolean(true)
	w.String("signatureblob")

	pk, err := Decode(game.PhaseLogin, 0x02, w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ls := pk.(*LoginSuccess)
	if ls.UUID != u || ls.Username != "Steve" {
		t.Errorf("decoded: %+v", ls)
	}
	if len(ls.Properties) != 1 || ls.Properties[0].Name != "textures" {
		t.Errorf("properties: %+v", ls.Properties)
	}
	if !ls.Properties[0].Signature.Exists || ls.Properties[0].Signature.Item != "signatureblob" {
		t.Errorf("signature: %+v", ls.Properties[0].Signature)
	}

	if err := pk.Handle(s); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if s.Username != "Steve" || s.UUID != u {
		t.Errorf("session identity: %q %s", s.Username, s.UUID)
	}

	if pk.(PhaseChanger).NextPhase() != game.PhasePlay {
		t.Error("LoginSuccess must move the connection to play")
	}
}

func TestSetCompression(t *testing.T) {
	w := NewWriter()
	w.VarInt(256)

	pk, err := Decode(game.PhaseLogin, 0x03, w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	cu, ok := pk.(CompressionUpdater)
	if !ok {
		t.Fatal("SetCompression does not update the threshold")
	}
	if cu.Threshold() != 256 {
		t.Errorf("Threshold: got %d, want 256", cu.Threshold())
	}
}

func TestEncryptionRequestRejected(t *testing.T) {
	s := game.NewSession()

	w := NewWriter()
	w.String("")
	w.ByteArray([]byte{1, 2, 3})
	w.ByteArray([]byte{4, 5, 6})
	w.Boolean(true)

	pk, err := Decode(game.PhaseLogin, 0x01, w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := pk.Handle(s); !errors.Is(err, ErrEncryptionUnsupported) {
		t.Errorf("Handle: got %v, want ErrEncryptionUnsupported", err)
	}
}
