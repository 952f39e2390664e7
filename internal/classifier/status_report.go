package classifier

import (
	"time"

	"imgclassd/pkg/types"
)

// Status builds a detailed status response for /status.
func (s *Service) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		ModelLoaded:      s.engine.Ready(),
		ModelPath:        s.engine.ModelPath(),
		InputShape:       s.engine.InputShape(),
		PredictionsTotal: s.predictions.Load(),
		UptimeSeconds:    int64(now.Sub(s.started).Seconds()),
		ServerTimeUnix:   now.Unix(),
		Sanity:           s.SanityCheck(),
	}
	if err := s.engine.LoadErr(); err != nil {
		resp.LoadError = err.Error()
	}
	return resp
}
