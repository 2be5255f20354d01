package http_test

import (
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	controller "github.com/secmon-lab/phenodash/pkg/controller/http"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

func TestParseQuery(t *testing.T) {
	v := controller.NewValidator()

	t.Run("no parameters keeps every default", func(t *testing.T) {
		q, err := controller.ParseQuery(httptest.NewRequest("GET", "/", nil), v)
		gt.NoError(t, err).Required()
		gt.Nil(t, q.Start)
		gt.Nil(t, q.End)
		gt.True(t, q.Phenotypes == nil)
	})

	t.Run("dates and repeated phenotypes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?start=2024-01-01&end=2024-02-01&phenotype=mrsa&phenotype=Wild", nil)
		q, err := controller.ParseQuery(req, v)
		gt.NoError(t, err).Required()
		gt.Equal(t, q.Start.Format(model.DateLayout), "2024-01-01")
		gt.Equal(t, q.End.Format(model.DateLayout), "2024-02-01")
		gt.Equal(t, q.Phenotypes, []types.Phenotype{types.PhenotypeMRSA, types.PhenotypeWild})
	})

	t.Run("comma separated phenotypes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?phenotype=VRSA,others", nil)
		q, err := controller.ParseQuery(req, v)
		gt.NoError(t, err).Required()
		gt.Equal(t, q.Phenotypes, []types.Phenotype{types.PhenotypeVRSA, types.PhenotypeOthers})
	})

	t.Run("empty phenotype parameter selects nothing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?phenotype=", nil)
		q, err := controller.ParseQuery(req, v)
		gt.NoError(t, err).Required()
		gt.True(t, q.Phenotypes != nil)
		gt.Equal(t, len(q.Phenotypes), 0)
	})

	t.Run("start after end is accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?start=2024-03-01&end=2024-01-01", nil)
		q, err := controller.ParseQuery(req, v)
		gt.NoError(t, err).Required()
		gt.True(t, q.Start.After(*q.End))
	})

	invalid := map[string]string{
		"bad start":         "/?start=01/02/2024",
		"bad end":           "/?end=2024-13-01",
		"unknown phenotype": "/?phenotype=MSSA",
	}
	for name, target := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := controller.ParseQuery(httptest.NewRequest("GET", target, nil), v)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, controller.ErrTagInvalidQuery))
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	start, _ := model.ParseDate("2024-01-01")
	end, _ := model.ParseDate("2024-01-08")

	t.Run("selected phenotypes", func(t *testing.T) {
		view := &model.View{
			Range:    model.NewDateRange(start, end),
			Selected: []types.Phenotype{types.PhenotypeMRSA, types.PhenotypeVRSA},
		}
		gt.Equal(t, controller.EncodeQuery(view), "start=2024-01-01&end=2024-01-08&phenotype=MRSA&phenotype=VRSA")
	})

	t.Run("empty selection round trips", func(t *testing.T) {
		view := &model.View{Range: model.NewDateRange(start, end), Selected: []types.Phenotype{}}
		encoded := controller.EncodeQuery(view)
		gt.Equal(t, encoded, "start=2024-01-01&end=2024-01-08&phenotype=")

		q, err := controller.ParseQuery(httptest.NewRequest("GET", "/?"+encoded, nil), controller.NewValidator())
		gt.NoError(t, err).Required()
		gt.Equal(t, len(q.Phenotypes), 0)
		gt.True(t, q.Phenotypes != nil)
	})
}
