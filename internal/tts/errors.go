package tts

import (
	"context"
	"errors"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/plugin"
)

var (
	// ErrCancelled is returned when a synthesis is aborted by cancel or by
	// its context.
	ErrCancelled = &plugin.Error{Code: plugin.CodeCancelled, Message: "Synthesis cancelled."}

	// ErrInvalidPath is returned when read_audio targets a file outside the
	// cache directory.
	ErrInvalidPath = &plugin.Error{Code: plugin.CodeInvalidPath, Message: "Invalid audio path."}
)

// assetError classifies a failed asset check.
func assetError(err error) error {
	switch {
	case errors.Is(err, model.ErrAssetMissing):
		return &plugin.Error{Code: plugin.CodeModelNotInstalled, Message: err.Error(), Err: err}
	case errors.Is(err, model.ErrAssetIncomplete):
		return &plugin.Error{Code: plugin.CodeModelIncomplete, Message: err.Error(), Err: err}
	default:
		return err
	}
}

// publicError gives every error leaving the plugin a stable code.
func publicError(err error) error {
	var pe *plugin.Error
	var de *model.DownloadError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &pe):
		return err
	case errors.Is(err, context.Canceled):
		return ErrCancelled
	case errors.Is(err, model.ErrAssetMissing), errors.Is(err, model.ErrAssetIncomplete):
		return assetError(err)
	case errors.As(err, &de):
		return &plugin.Error{Code: plugin.CodeDownloadFailed, Message: de.Error(), Err: err}
	case errors.Is(err, model.ErrImportSource):
		return &plugin.Error{Code: plugin.CodeInvalidPayload, Message: err.Error(), Err: err}
	case errors.Is(err, engine.ErrCorrupt):
		return &plugin.Error{Code: plugin.CodeModelCorrupt, Message: err.Error(), Err: err}
	default:
		return plugin.NewError(plugin.CodeInvokeFailed, err)
	}
}
