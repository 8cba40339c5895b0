package storage

import (
	"bytes"
	"context"
)

// AudioArchive stores extracted audio samples under per-user keys and hands
// back the retrievable reference used by transcription and voice enrollment.
type AudioArchive struct {
	store ObjectStorage
}

// NewAudioArchive creates an AudioArchive.
func NewAudioArchive(store ObjectStorage) *AudioArchive {
	return &AudioArchive{store: store}
}

// UploadAudio stores one extracted MP3 and returns its reference URL.
func (a *AudioArchive) UploadAudio(ctx context.Context, userID, videoID string, data []byte) (string, error) {
	key := AudioKey(userID, videoID)
	if err := a.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "audio/mpeg"); err != nil {
		return "", err
	}
	return a.store.GetURL(key), nil
}
