package payrollhandler

import (
	"bytes"
	"net/http"

	"payrun/internal/domain/payroll"
	"payrun/internal/importer"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
)

const maxUploadMemory = 8 << 20

type importResponse struct {
	FileName string              `json:"fileName"`
	RowCount int                 `json:"rowCount"`
	Lines    []int               `json:"lines"`
	Result   payroll.BatchResult `json:"result"`
}

// handleImport reads the multipart "file" part and runs every row as one
// batch. Lines[i] is the sheet line of item i, so item errors can be
// traced back to the upload.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.failPayload(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "multipart field \"file\" is required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	rows, err := importer.Read(file, header.Filename)
	if err != nil {
		h.failDomain(w, r, err, "import_failed", "failed to read upload")
		return
	}
	lines := make([]int, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.Line)
	}

	result, err := h.Service.ProcessBatch(r.Context(), importer.Items(rows))
	if err != nil {
		h.failDomain(w, r, err, "import_failed", "failed to process upload")
		return
	}
	h.recordBatch(result)
	api.Success(w, importResponse{
		FileName: header.Filename,
		RowCount: len(rows),
		Lines:    lines,
		Result:   result,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := importer.Template(&buf, h.Service.Registry().List()); err != nil {
		h.failDomain(w, r, err, "template_failed", "failed to build template")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=payroll-template.xlsx")
	_, _ = w.Write(buf.Bytes())
}
