package xerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jpfielding/jpegxt/pkg/jpegxt/xerrors"
	"github.com/stretchr/testify/assert"
)

func TestErrfWrapsCauseAndMatchesKind(t *testing.T) {
	cause := fmt.Errorf("short read")
	err := xerrors.Errf(xerrors.UnexpectedEOF, cause, "truncated at byte %d", 12)

	assert.True(t, errors.Is(err, xerrors.UnexpectedEOF))
	assert.False(t, errors.Is(err, xerrors.MalformedStream))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unexpected_eof: truncated at byte 12", err.Error())
}

func TestKindOfExtractsKind(t *testing.T) {
	err := xerrors.Errf(xerrors.NotInProfile, nil, "baseline+arithmetic")
	assert.Equal(t, xerrors.NotInProfile, xerrors.KindOf(err))
	assert.Equal(t, xerrors.Kind(""), xerrors.KindOf(fmt.Errorf("plain error")))
}

func TestErrorWithoutDetailPrintsBareKind(t *testing.T) {
	err := xerrors.Errf(xerrors.OutOfMemory, nil, "")
	assert.Equal(t, "out_of_memory", err.Error())
}
