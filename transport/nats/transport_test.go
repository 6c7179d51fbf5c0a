package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/faqbot"
)

func TestFailureKind(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.7:19530: connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"load", &faqbot.StageError{Stage: faqbot.StageLoad, Kind: faqbot.ErrLoad, Err: cause}, faqbot.ErrLoad},
		{"index", &faqbot.StageError{Stage: faqbot.StageIndex, Kind: faqbot.ErrIndex, Err: cause}, faqbot.ErrIndex},
		{"deadline", context.DeadlineExceeded, faqbot.ErrIndex},
	}

	for _, tt := range tests {
		got := failureKind(tt.err)
		assert.Equal(t, tt.want, got, tt.name)
		assert.NotContains(t, got.Error(), "10.0.0.7", tt.name)
	}
}
