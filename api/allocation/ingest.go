package allocation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"FieldCollect/api"
	"FieldCollect/api/auth"
	"FieldCollect/api/utils"
	"FieldCollect/internal/config"
)

// RowError reports one failed data row; the batch itself keeps going.
type RowError struct {
	RowIndex int    `json:"rowIndex"`
	Message  string `json:"message"`
}

// Helper: get file extension
func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Helper: parse uploaded file bytes into [][]string
func parseUploadFile(data []byte, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		rows := wb.ReadAllCells(65535)
		if len(rows) == 0 {
			return nil, errors.New("empty xls sheet")
		}
		return rows, nil
	}
	return nil, errors.New("unsupported file type")
}

func fileChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// UploadAllocations ingests a portfolio spreadsheet: header row resolved
// once, every data row coerced into a canonical document and upserted by
// loan number. Row failures are recorded per row and never abort the
// batch — partial success is expected with bank-supplied files.
func UploadAllocations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}

		userID := r.FormValue("user_id")
		if userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "user_id required in form")
			return
		}
		userName := ""
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				userName = s.Name
				break
			}
		}
		if userName == "" {
			api.RespondWithError(w, http.StatusUnauthorized, "User not found in active sessions")
			return
		}

		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to read file: "+fileHeader.Filename)
			return
		}

		records, err := parseUploadFile(data, getFileExt(fileHeader.Filename))
		if err != nil || len(records) < 2 {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid or empty file: "+fileHeader.Filename)
			return
		}

		uploadID, err := createUploadFile(ctx, pool, fileHeader.Filename, userName, fileChecksum(data))
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Failed to record upload: "+err.Error())
			return
		}

		cols := ResolveHeaderRow(records[0])
		dataRows := records[1:]

		upserted := 0
		skipped := 0
		rowErrors := make([]RowError, 0)
		for i, row := range dataRows {
			rowIndex := i + 1 // 0 is the header row
			doc, loanNumber := BuildRowDocument(cols, row)
			if loanNumber == "" {
				// No identity, no upsert. Visibility only — banks ship
				// subtotal and footer rows all the time.
				skipped++
				api.LogInfo("upload %d: row %d skipped, no resolvable loan number", uploadID, rowIndex)
				continue
			}
			if _, err := Upsert(ctx, pool, loanNumber, doc); err != nil {
				rowErrors = append(rowErrors, RowError{RowIndex: rowIndex, Message: err.Error()})
				recordUploadError(ctx, pool, uploadID, rowIndex, err.Error())
				continue
			}
			upserted++
		}

		if err := completeUploadFile(ctx, pool, uploadID, len(dataRows), upserted, len(rowErrors)); err != nil {
			api.LogError("upload %d: failed to finalize upload record: %v", uploadID, err)
		}
		api.LogInfo("upload %d: %s by %s — %d upserted, %d skipped, %d failed",
			uploadID, fileHeader.Filename, userName, upserted, skipped, len(rowErrors))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":                true,
			"insertedOrUpdatedCount": upserted,
			"skippedRows":            skipped,
			"perRowErrors":           rowErrors,
		})
	}
}

func createUploadFile(ctx context.Context, pool *pgxpool.Pool, fileName, uploadedBy, checksum string) (int64, error) {
	var dup bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM upload_file WHERE checksum = $1)`, checksum).Scan(&dup); err == nil && dup {
		api.LogInfo("duplicate upload detected for checksum %s; re-ingestion is idempotent, proceeding", checksum)
	}
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO upload_file (file_name, uploaded_by, checksum, status, uploaded_at)
		VALUES ($1, $2, $3, 'PROCESSING', now())
		RETURNING id
	`, fileName, uploadedBy, checksum).Scan(&id)
	return id, err
}

func completeUploadFile(ctx context.Context, pool *pgxpool.Pool, id int64, total, success, failed int) error {
	_, err := pool.Exec(ctx, `
		UPDATE upload_file
		SET total_rows = $2, success_rows = $3, failed_rows = $4, status = 'COMPLETED'
		WHERE id = $1
	`, id, total, success, failed)
	return err
}

func recordUploadError(ctx context.Context, pool *pgxpool.Pool, uploadID int64, rowIndex int, message string) {
	if _, err := pool.Exec(ctx, `
		INSERT INTO upload_error (upload_file_id, row_index, error_message, created_at)
		VALUES ($1, $2, $3, now())
	`, uploadID, rowIndex, message); err != nil {
		api.LogError("upload %d: failed to record row error: %v", uploadID, err)
	}
}

// GetAllocationHandler returns one allocation by loan number.
func GetAllocationHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanNumber := r.URL.Query().Get("loan_number")
		if loanNumber == "" {
			api.RespondWithError(w, http.StatusBadRequest, "loan_number required")
			return
		}
		a, err := GetByLoanNumber(r.Context(), pool, loanNumber)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if a == nil {
			api.RespondWithError(w, http.StatusNotFound, "Loan not found")
			return
		}
		api.RespondWithPayload(w, true, "", a)
	}
}

// ListAllocationsHandler returns a paginated allocation listing.
func ListAllocationsHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		rows, total, err := List(r.Context(), pool, params.Limit, params.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		params.SetPaginationStats(total)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"rows":       rows,
			"pagination": params,
		})
	}
}
