package http

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// ErrTagInvalidQuery marks a request whose filter parameters are malformed
var ErrTagInvalidQuery = goerr.NewTag("invalid_query")

// dashboardRequest holds the raw filter parameters of a request.
// start > end is accepted and renders an empty view.
type dashboardRequest struct {
	Start      string   `validate:"omitempty,datetime=2006-01-02"`
	End        string   `validate:"omitempty,datetime=2006-01-02"`
	Phenotypes []string `validate:"dive,phenotype"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("phenotype", func(fl validator.FieldLevel) bool {
		_, err := types.ParsePhenotype(fl.Field().String())
		return err == nil
	}); err != nil {
		// registration only fails on an empty tag name
		panic(err)
	}
	return v
}

// parseQuery reads start, end and repeated phenotype parameters. A present
// but empty phenotype parameter selects no phenotype at all; an absent one
// keeps the default selection.
func parseQuery(r *http.Request, v *validator.Validate) (model.Query, error) {
	values := r.URL.Query()

	req := dashboardRequest{
		Start: strings.TrimSpace(values.Get("start")),
		End:   strings.TrimSpace(values.Get("end")),
	}
	_, explicit := values["phenotype"]
	for _, p := range values["phenotype"] {
		for _, name := range strings.Split(p, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Phenotypes = append(req.Phenotypes, name)
			}
		}
	}

	if err := v.Struct(req); err != nil {
		return model.Query{}, goerr.Wrap(err, "invalid filter parameters",
			goerr.V("query", r.URL.RawQuery),
			goerr.T(ErrTagInvalidQuery))
	}

	var query model.Query
	if req.Start != "" {
		start, err := model.ParseDate(req.Start)
		if err != nil {
			return model.Query{}, goerr.Wrap(err, "invalid start date", goerr.T(ErrTagInvalidQuery))
		}
		query.Start = &start
	}
	if req.End != "" {
		end, err := model.ParseDate(req.End)
		if err != nil {
			return model.Query{}, goerr.Wrap(err, "invalid end date", goerr.T(ErrTagInvalidQuery))
		}
		query.End = &end
	}

	if explicit {
		query.Phenotypes = make([]types.Phenotype, 0, len(req.Phenotypes))
		for _, name := range req.Phenotypes {
			p, err := types.ParsePhenotype(name)
			if err != nil {
				return model.Query{}, goerr.Wrap(err, "invalid phenotype", goerr.T(ErrTagInvalidQuery))
			}
			query.Phenotypes = append(query.Phenotypes, p)
		}
	}

	return query, nil
}

// encodeQuery renders a view's effective selection back to query parameters
func encodeQuery(view *model.View) string {
	var b strings.Builder
	b.WriteString("start=")
	b.WriteString(view.Range.Start.Format(model.DateLayout))
	b.WriteString("&end=")
	b.WriteString(view.Range.End.Format(model.DateLayout))
	if len(view.Selected) == 0 {
		b.WriteString("&phenotype=")
	}
	for _, p := range view.Selected {
		b.WriteString("&phenotype=")
		b.WriteString(p.String())
	}
	return b.String()
}
