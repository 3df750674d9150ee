package recorder

import "StockRadar/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error                          { return nil }
func (n *NoopRecorder) RecordEvents(_ string, _ *model.EventAssessment) error { return nil }
func (n *NoopRecorder) RecordThrottle(_ ThrottleSnapshot) error               { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
