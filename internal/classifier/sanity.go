package classifier

import (
	"fmt"

	"imgclassd/pkg/types"
)

// SanityCheck compares the loaded model against the catalog. It does not
// mutate state and is safe to call at any time.
func (s *Service) SanityCheck() types.SanityReport {
	r := types.SanityReport{ModelLoaded: s.engine.Ready(), CatalogSize: s.catalog.Len()}
	if !r.ModelLoaded {
		if err := s.engine.LoadErr(); err != nil {
			r.Error = err.Error()
		} else {
			r.Error = MsgModelNotLoaded
		}
		return r
	}
	outs := s.engine.Outputs()
	if len(outs) == 0 {
		return r
	}
	r.OutputClasses = ClassesPerRow(outs[0].Shape)
	if r.OutputClasses > 0 && r.OutputClasses != r.CatalogSize {
		r.Error = fmt.Sprintf("catalog has %d labels but model output %q has %d classes",
			r.CatalogSize, outs[0].Name, r.OutputClasses)
	}
	return r
}
