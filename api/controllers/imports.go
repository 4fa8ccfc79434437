package controllers

import (
	"net/http"

	"github.com/pandoralabs/stockline-backend/api/responses"
	importersvc "github.com/pandoralabs/stockline-backend/internal/importer"
	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
	"github.com/pandoralabs/stockline-backend/pkg/logger"
)

// maxImportUpload caps spreadsheet uploads at 10 MiB.
const maxImportUpload = 10 << 20

// ImportComponents accepts a multipart CSV upload and upserts one
// component per row.
func ImportComponents(svc importersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "importer service unavailable"))
			return
		}

		rows, _, err := rowsFromUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.ImportComponents(r.Context(), rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ImportRecipe accepts a multipart CSV upload and replaces the bill of
// materials for the recipe named by the uploaded file.
func ImportRecipe(svc importersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "importer service unavailable"))
			return
		}

		rows, filename, err := rowsFromUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ImportBOM(r.Context(), filename, rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func rowsFromUpload(r *http.Request) ([]map[string]string, string, error) {
	if err := r.ParseMultipartForm(maxImportUpload); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expected multipart form upload")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "form field \"file\" is required")
	}
	defer func() { _ = file.Close() }()

	rows, err := importersvc.ParseCSV(file)
	if err != nil {
		return nil, "", err
	}
	return rows, header.Filename, nil
}
