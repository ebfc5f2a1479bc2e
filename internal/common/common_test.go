package common_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lmt-facturation/internal/common"
)

func TestAppErrorMessage(t *testing.T) {
	base := errors.New("disk full")
	err := common.NewAppError(common.CodeRenderFailed, "render pdf", base)
	require.Equal(t, "render pdf: disk full", err.Error())
	require.ErrorIs(t, err, base)

	require.Equal(t, "disk full", common.NewAppError("X", "", base).Error())
	require.Equal(t, "only message", common.NewAppError("X", "only message", nil).Error())
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("load: %w", common.NewAppError(common.CodeCatalogInvalid, "bad catalog", nil))
	require.True(t, common.IsAppError(err))
	require.Equal(t, common.CodeCatalogInvalid, common.CodeOf(err))
	require.Empty(t, common.CodeOf(errors.New("plain")))
	require.False(t, common.IsAppError(nil))
}

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1,max=3"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, common.ValidateStruct(sample{Name: "a", Count: 2}))

	err := common.ValidateStruct(sample{Count: 5})
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeValidation, appErr.Code)
	require.Equal(t, "invalid Name, Count", appErr.Message)
	require.Equal(t, []common.FieldError{
		{Field: "sample.Name", Rule: "required"},
		{Field: "sample.Count", Rule: "max", Param: "3"},
	}, appErr.Details)
}

func TestParseInt64Default(t *testing.T) {
	require.EqualValues(t, 42, common.ParseInt64Default(" 42 ", 7))
	require.EqualValues(t, 7, common.ParseInt64Default("", 7))
	require.EqualValues(t, 7, common.ParseInt64Default("4.5", 7))
}

func TestSha256Hex(t *testing.T) {
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", common.Sha256Hex(nil))
	require.Len(t, common.Sha256Hex([]byte("%PDF-1.3")), 64)
}
