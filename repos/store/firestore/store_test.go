package fsstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/playmatch/api/pkg/apperrors"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "no doc"), apperrors.ErrNotFound},
		{"already exists", status.Error(codes.AlreadyExists, "dup"), apperrors.ErrAlreadyExists},
		{"unavailable", status.Error(codes.Unavailable, "down"), apperrors.ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), apperrors.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tc.err, "doc"), tc.want)
		})
	}
}

func TestTranslateKeepsOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	err := translate(boom, "doc")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, translate(nil, "doc"))
}
