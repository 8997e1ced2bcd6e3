package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sumatoshi-tech/sharechart/pkg/palette"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
)

// SnapshotResponse is returned by GET /api/snapshot.
type SnapshotResponse struct {
	Country string    `json:"country"`
	Year    int       `json:"year"`
	Source  string    `json:"source"`
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Colors  []string  `json:"colors"`
}

// SummaryResponse is returned by GET /api/summary.
type SummaryResponse struct {
	Country  string `json:"country"`
	Year     int    `json:"year"`
	Index    *int   `json:"index,omitempty"`
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
}

// DatasetsResponse is returned by GET /api/datasets.
type DatasetsResponse struct {
	Source    string   `json:"source"`
	Version   uint64   `json:"version"`
	Countries []string `json:"countries"`
	Years     []int    `json:"years"`
	YearMin   int      `json:"yearMin"`
	YearMax   int      `json:"yearMax"`
}

// lookup resolves the country and year query parameters, defaulting to the
// live state.
func (s *Server) lookup(hr *http.Request) (country string, year int, err error) {
	state := s.ctrl.State()
	country, year = state.Country, state.Year

	q := hr.URL.Query()

	if c := q.Get("country"); c != "" {
		country = c
	}

	if raw := q.Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return "", 0, fmt.Errorf("%w: %q", ErrInvalidYear, raw)
		}
	}

	return country, year, nil
}

func (s *Server) handleSnapshot(rw http.ResponseWriter, hr *http.Request) {
	country, year, err := s.lookup(hr)
	if err != nil {
		s.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	store := s.ctrl.Store()
	snap := store.Get(country, year)

	resp := SnapshotResponse{
		Country: country,
		Year:    year,
		Source:  store.Source().Label(),
		Labels:  snap.Labels,
		Values:  snap.Values,
		Colors:  palette.For(snap.Labels),
	}

	if resp.Colors == nil {
		resp.Colors = []string{}
	}

	s.writeJSON(rw, hr, http.StatusOK, resp)
}

func (s *Server) handleSummary(rw http.ResponseWriter, hr *http.Request) {
	country, year, err := s.lookup(hr)
	if err != nil {
		s.writeError(rw, hr, http.StatusBadRequest, err)

		return
	}

	snap := s.ctrl.Store().Get(country, year)
	h := summary.None
	resp := SummaryResponse{Country: country, Year: year}

	if raw := hr.URL.Query().Get("index"); raw != "" {
		i, convErr := strconv.Atoi(raw)
		if convErr != nil || !summary.At(i).Valid(snap.Len()) {
			s.writeError(rw, hr, http.StatusBadRequest,
				fmt.Errorf("%w: %q for %d brands", ErrInvalidIndex, raw, snap.Len()))

			return
		}

		h = summary.At(i)
		resp.Index = &i
	}

	sum := summary.Summarize(h, snap.Labels, snap.Values, country, year)
	resp.Headline, resp.Detail = sum.Headline, sum.Detail

	s.writeJSON(rw, hr, http.StatusOK, resp)
}

func (s *Server) handleDatasets(rw http.ResponseWriter, hr *http.Request) {
	store := s.ctrl.Store()
	lo, hi, _ := store.YearRange()

	s.writeJSON(rw, hr, http.StatusOK, DatasetsResponse{
		Source:    store.Source().Label(),
		Version:   store.Version(),
		Countries: store.Countries(),
		Years:     store.Years(),
		YearMin:   lo,
		YearMax:   hi,
	})
}
