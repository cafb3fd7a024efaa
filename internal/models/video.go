package models

import "time"

// TranscodeStatus tracks the asset pipeline state machine.
type TranscodeStatus string

// Pipeline states. Only READY assets are playable.
const (
	TranscodePending    TranscodeStatus = "PENDING"
	TranscodeProcessing TranscodeStatus = "PROCESSING"
	TranscodeReady      TranscodeStatus = "READY"
	TranscodeFailed     TranscodeStatus = "FAILED"
)

// VideoAsset references stored media and its transcode progress.
type VideoAsset struct {
	ID               string          `db:"id" json:"id"`
	RawObjectKey     string          `db:"raw_object_key" json:"raw_object_key"`
	HLSManifestKey   *string         `db:"hls_manifest_key" json:"hls_manifest_key,omitempty"`
	EncryptionKeyRef *string         `db:"encryption_key_ref" json:"encryption_key_ref,omitempty"`
	TranscodeStatus  TranscodeStatus `db:"transcode_status" json:"transcode_status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
