package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"indiflow-dashboard-api/logger"
	"indiflow-dashboard-api/models"

	"go.uber.org/zap"
)

const unknownRoute = "Unknown Route"

var (
	errNotArray  = errors.New("top-level value is not an array")
	errNotObject = errors.New("not an object")

	// leadingNumber matches the numeric prefix of values such as "12min".
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Record is one loosely typed row of an uploaded training file.
type Record map[string]any

// Upload is a decoded training file.
type Upload struct {
	Format    string
	Records   []Record
	ShortRows int
}

// ParseUpload decodes content according to the file name's extension.
// Text files are accepted but carry no records.
func ParseUpload(fileName string, content []byte) (Upload, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".json":
		var rows []Record
		if err := json.Unmarshal(content, &rows); err != nil {
			return Upload{}, &ParseError{Format: "json", Err: err}
		}
		if rows == nil {
			return Upload{}, &ParseError{Format: "json", Err: errNotArray}
		}
		for i, row := range rows {
			if row == nil {
				return Upload{}, &ParseError{Format: "json", Err: fmt.Errorf("element %d: %w", i, errNotObject)}
			}
		}
		return Upload{Format: "json", Records: rows}, nil
	case ".csv":
		rows, short := parseCSV(string(content))
		return Upload{Format: "csv", Records: rows, ShortRows: short}, nil
	case ".txt":
		return Upload{Format: "txt"}, nil
	default:
		return Upload{}, &FormatError{FileName: fileName}
	}
}

// parseCSV splits on newlines and commas only. Quoted values containing
// commas are not supported; one pair of surrounding quotes is stripped.
func parseCSV(content string) ([]Record, int) {
	lines := strings.Split(content, "\n")
	header := strings.Split(strings.TrimPrefix(lines[0], "\ufeff"), ",")
	for i := range header {
		header[i] = csvValue(header[i])
	}

	var rows []Record
	short := 0
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := strings.Split(line, ",")
		if len(values) < len(header) {
			short++
		}
		row := make(Record, len(header))
		for i, name := range header {
			if i < len(values) {
				row[name] = csvValue(values[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, short
}

func csvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// NormalizeRecord maps a row onto a dashboard-originated submission. For
// each field the first alias holding a non-empty value wins.
func NormalizeRecord(rec Record, submittedAt time.Time) models.TrainingSubmission {
	route := toString(firstValue(rec, "route", "route_name"))
	if route == "" {
		route = unknownRoute
	}
	return models.TrainingSubmission{
		UserID:               models.DevUploadUserID,
		RouteName:            route,
		PredictedTimeMinutes: toFloat(firstValue(rec, "predicted_time", "predicted", "predicted_time_minutes")),
		ActualTimeMinutes:    toFloat(firstValue(rec, "actual_time", "actual", "actual_time_minutes")),
		TrafficLevel:         models.ParseTrafficLevel(toString(firstValue(rec, "traffic_level", "traffic"))),
		TransportMode:        models.TransportDriving,
		SubmittedAt:          submittedAt,
	}
}

func firstValue(rec Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0 || math.IsNaN(x)
	case bool:
		return !x
	default:
		return false
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func toFloat(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		num := leadingNumber.FindString(strings.TrimSpace(x))
		if num == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

type TrainingWriter interface {
	Insert(ctx context.Context, items []models.TrainingSubmission) error
}

// Reloader refreshes a session after new data lands.
type Reloader interface {
	LoadStats(ctx context.Context, sess *Session) (models.DashboardStats, error)
}

type IngestorOpts struct {
	Training TrainingWriter
	Reloader Reloader
	Logger   *zap.Logger
	Now      func() time.Time
}

// Ingestor turns uploaded training files into persisted submissions.
type Ingestor struct {
	training TrainingWriter
	reloader Reloader
	log      *zap.Logger
	now      func() time.Time
}

func NewIngestor(opts IngestorOpts) *Ingestor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		training: opts.Training,
		reloader: opts.Reloader,
		log:      logger.OrNop(opts.Logger),
		now:      now,
	}
}

// Ingest parses and stores an uploaded file one record at a time and
// returns how many records were persisted. The first insert failure stops
// the batch; earlier records are not rolled back. A fully stored batch
// reloads the session.
func (in *Ingestor) Ingest(ctx context.Context, sess *Session, fileName string, content []byte) (int, error) {
	if !sess.beginUpload() {
		return 0, ErrUploadInProgress
	}
	defer sess.endUpload()

	upload, err := ParseUpload(fileName, content)
	if err != nil {
		uploadsFailed.WithLabelValues(failureReason(err)).Inc()
		in.log.Error("training upload rejected", zap.String("file", fileName), zap.Error(err))
		return 0, err
	}
	if upload.ShortRows > 0 {
		in.log.Warn("csv rows shorter than header, missing fields defaulted",
			zap.String("file", fileName), zap.Int("rows", upload.ShortRows))
	}

	submittedAt := in.now()
	persisted := 0
	for i, rec := range upload.Records {
		sub := NormalizeRecord(rec, submittedAt)
		if err := in.training.Insert(ctx, []models.TrainingSubmission{sub}); err != nil {
			ierr := &InsertError{Index: i, Persisted: persisted, Err: err}
			uploadsFailed.WithLabelValues(failureReason(ierr)).Inc()
			in.log.Error("training upload aborted", zap.String("file", fileName), zap.Error(ierr))
			return persisted, ierr
		}
		persisted++
		recordsIngested.Inc()
	}

	if in.reloader != nil {
		// Load failures are logged by the aggregator; the upload itself succeeded.
		_, _ = in.reloader.LoadStats(ctx, sess)
	}
	in.log.Info("training data uploaded",
		zap.String("file", fileName),
		zap.String("format", upload.Format),
		zap.Int("records", persisted))
	return persisted, nil
}

func failureReason(err error) string {
	var (
		perr *ParseError
		ferr *FormatError
		ierr *InsertError
	)
	switch {
	case errors.As(err, &perr):
		return "parse"
	case errors.As(err, &ferr):
		return "format"
	case errors.As(err, &ierr):
		return "insert"
	default:
		return "other"
	}
}
