package build

import (
	"crypto/sha256"
	"encoding/hex"
)

type Fingerprint struct {
	ContentHash  string
	ThemeHash    string
	ConfigHash   string
	RendererHash string
	// OutputHash covers per-request state that ends up in the page, such as
	// copy flags.
	OutputHash string
	RenderHash string
}

func (f *Fingerprint) ComputeRenderHash() {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte(f.ThemeHash))
	h.Write([]byte(f.ConfigHash))
	h.Write([]byte(f.RendererHash))
	h.Write([]byte(f.OutputHash))
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
}

// ETag is a strong validator for a response rendered from this fingerprint.
func (f *Fingerprint) ETag() string {
	if f.RenderHash == "" {
		f.ComputeRenderHash()
	}
	return `"` + f.RenderHash[:32] + `"`
}

// HashString is the hex sha256 of s, used for config and theme hashes.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
