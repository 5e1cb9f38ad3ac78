package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"agegroup/inference"
	"agegroup/ml"
	"agegroup/survey"
)

const (
	downloadFilename = "age_group_predictions.csv"
	maxFormMemory    = 8 << 20
)

// APIConfig tunes the prediction endpoints.
type APIConfig struct {
	PreviewRows    int
	StrictBatch    bool
	BatchCacheSize int
	BatchTTL       time.Duration
	AllowedOrigins []string
}

// API serves predictions from one loaded model. The model is never
// replaced after construction.
type API struct {
	model       ml.Classifier
	batches     *BatchStore
	opts        survey.NormalizeOptions
	previewRows int
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

func NewAPI(model ml.Classifier, cfg APIConfig, logger *zap.Logger) *API {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = inference.DefaultPreviewRows
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = 15 * time.Minute
	}
	origins := cfg.AllowedOrigins
	return &API{
		model:       model,
		batches:     NewBatchStore(cfg.BatchCacheSize, cfg.BatchTTL),
		opts:        survey.NormalizeOptions{StrictRanges: cfg.StrictBatch},
		previewRows: cfg.PreviewRows,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(origins, origin)
			},
		},
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/schema", handleSchema)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("POST /api/batch", a.handleBatchUpload)
	mux.HandleFunc("GET /api/batch/{id}/download", a.handleBatchDownload)
	mux.HandleFunc("POST /api/batch/csv", a.handleBatchCSV)
	mux.HandleFunc("GET /api/ws/predict", a.handleWSPredict)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"columns": survey.RequiredColumns(),
		"fields":  survey.Schema(),
	})
}

type predictResponse struct {
	Label    int                `json:"label"`
	AgeGroup inference.Category `json:"age_group"`
	Message  string             `json:"message"`
}

func newPredictResponse(res inference.Result) predictResponse {
	return predictResponse{Label: res.Label, AgeGroup: res.AgeGroup, Message: res.Message()}
}

// handlePredict accepts one record as JSON or as form fields.
func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeRecord(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	res, err := inference.PredictRecord(a.model, rec)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newPredictResponse(res))
}

func decodeRecord(r *http.Request) (survey.Record, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return survey.Record{}, badRequest(err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for name := range r.PostForm {
			fields[name] = r.PostForm.Get(name)
		}
		return survey.RecordFromFields(fields)
	default:
		var rec survey.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			if survey.IsUserError(err) || isBodyTooLarge(err) {
				return survey.Record{}, err
			}
			return survey.Record{}, badRequest(err)
		}
		return rec, nil
	}
}

type batchResponse struct {
	BatchID     string              `json:"batch_id"`
	Rows        int                 `json:"rows"`
	Columns     []string            `json:"columns"`
	Preview     []map[string]string `json:"preview"`
	DownloadURL string              `json:"download_url"`
}

// handleBatchUpload predicts an uploaded CSV, keeps the result for download
// and answers with a preview.
func (a *API) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if isBodyTooLarge(err) {
			a.respondError(w, r, err)
			return
		}
		a.respondError(w, r, badRequest(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		a.respondError(w, r, badRequest(errors.New("multipart field \"file\" is required")))
		return
	}
	defer file.Close()

	table, err := survey.ReadCSV(file, r.FormValue("encoding"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	batch, err := inference.PredictTable(a.model, table, a.opts)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	id := a.batches.Put(batch)
	a.logger.Info("batch predicted",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("batch_id", id),
		zap.Int("rows", batch.Table.Len()),
	)

	preview := batch.Preview(a.previewRows)
	rows := make([]map[string]string, preview.Len())
	for i, row := range preview.Rows {
		rows[i] = make(map[string]string, len(preview.Header))
		for j, name := range preview.Header {
			rows[i][name] = row[j]
		}
	}
	respondJSON(w, http.StatusOK, batchResponse{
		BatchID:     id,
		Rows:        batch.Table.Len(),
		Columns:     batch.Table.Header,
		Preview:     rows,
		DownloadURL: "/api/batch/" + id + "/download",
	})
}

func (a *API) handleBatchDownload(w http.ResponseWriter, r *http.Request) {
	batch, ok := a.batches.Get(r.PathValue("id"))
	if !ok {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "batch not found or expired"})
		return
	}
	a.writeCSV(w, r, batch.Table)
}

// handleBatchCSV takes a raw CSV body and answers with the predicted CSV.
func (a *API) handleBatchCSV(w http.ResponseWriter, r *http.Request) {
	table, err := survey.ReadCSV(r.Body, r.URL.Query().Get("encoding"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	batch, err := inference.PredictTable(a.model, table, a.opts)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	a.writeCSV(w, r, batch.Table)
}

func (a *API) writeCSV(w http.ResponseWriter, r *http.Request, table *survey.Table) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadFilename}))
	if err := survey.WriteCSV(w, table); err != nil {
		a.logger.Warn("write csv failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	}
}
