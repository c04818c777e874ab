package devices

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophrelease/internal/common"
)

// Source yields raw device records. Failures should satisfy
// errors.Is(err, common.ErrSourceUnavailable).
type Source interface {
	Fetch(ctx context.Context) ([]Device, error)
}

var errNoFeed = errors.New("no device feed configured")

// DisabledSource is used when neither a feed URL nor a DSN is configured.
type DisabledSource struct{}

func (DisabledSource) Fetch(context.Context) ([]Device, error) {
	return nil, &common.SourceUnavailableError{Source: "device feed", Err: errNoFeed}
}

func unavailable(source string, err error) error {
	if errors.Is(err, common.ErrSourceUnavailable) {
		return err
	}
	return &common.SourceUnavailableError{Source: source, Err: err}
}
