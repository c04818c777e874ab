package cli

import (
	"bytes"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// passphrasePrompt asks for the sealed-token passphrase on the terminal and
// remembers it for the session until the token store reports it wrong.
type passphrasePrompt struct {
	mu    sync.Mutex
	value []byte
	read  func(prompt string) ([]byte, error)
}

func newPassphrasePrompt(w io.Writer) *passphrasePrompt {
	return &passphrasePrompt{
		read: func(prompt string) ([]byte, error) { return GetPassword(w, prompt) },
	}
}

// Passphrase returns a copy of the session passphrase, prompting when none
// is remembered. With confirm set the answer must be typed twice.
func (p *passphrasePrompt) Passphrase(confirm bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.value == nil {
		v, err := p.read("Token passphrase: ")
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, common.NewValidationError("passphrase", "must not be empty")
		}
		if confirm {
			again, err := p.read("Repeat passphrase: ")
			if err != nil {
				common.WipeByteArray(v)
				return nil, err
			}
			same := bytes.Equal(v, again)
			common.WipeByteArray(again)
			if !same {
				common.WipeByteArray(v)
				return nil, common.NewValidationError("passphrase", "passphrases do not match")
			}
		}
		p.value = v
	}
	return append([]byte(nil), p.value...), nil
}

// Forget wipes the remembered passphrase; the next call prompts again.
func (p *passphrasePrompt) Forget() {
	p.mu.Lock()
	defer p.mu.Unlock()
	common.WipeByteArray(p.value)
	p.value = nil
}
