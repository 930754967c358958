// Package web serves the browser front end of rowsheet: an upload form and a
// conversion endpoint returning the generated workbook.
package web

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/models"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/output"
)

// Form field names.
const (
	FieldTemplate      = "templateFile"
	FieldSource        = "sourceFile"
	FieldConfiguration = "configurationFile"
	FieldGenerated     = "generatedFile"
)

// RunIDHeader carries the identifier of a conversion.
const RunIDHeader = "X-Run-ID"

// maxUploadMemory is the part of a multipart upload kept in memory.
const maxUploadMemory = 32 << 20

//go:embed form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

// errBusy is returned while another conversion is running.
var errBusy = errors.New("a conversion is already running, try again shortly")

// Server handles the form and conversion requests.
type Server struct {
	mapping    *MappingSource
	duplicates rowsheet.DuplicatePolicy
	log        zerolog.Logger

	busy sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultMapping makes the configuration upload optional.
func WithDefaultMapping(m *MappingSource) Option {
	return func(s *Server) { s.mapping = m }
}

// WithDuplicates sets the clone name collision policy.
func WithDuplicates(p rowsheet.DuplicatePolicy) Option {
	return func(s *Server) { s.duplicates = p }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer creates a Server.
func NewServer(opts ...Option) *Server {
	s := &Server{duplicates: rowsheet.DuplicateFail}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /convert", s.handleConvert)
	return mux
}

type formData struct {
	DefaultExtension string
	DefaultMapping   string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	data := formData{DefaultExtension: output.DefaultExtension}
	if s.mapping != nil {
		data.DefaultMapping = filepath.Base(s.mapping.Path())
	}

	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Msg("render form")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// errorBody is the JSON body of failed conversions.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// fieldError ties a failure to the form field that caused it.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }

func onField(field string, err error) error {
	if err == nil {
		return nil
	}
	return &fieldError{field: field, err: err}
}

// upload is a file received from the form.
type upload struct {
	name string
	data []byte
}

// conversion holds the validated inputs of one request.
type conversion struct {
	template upload
	source   upload
	mapping  *models.MappingConfig
	output   string
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	log := s.log.With().Str("run", runID).Logger()

	if !s.busy.TryLock() {
		log.Warn().Msg("conversion rejected, server busy")
		s.writeError(w, http.StatusConflict, errorBody{Error: errBusy.Error(), Kind: "busy"})
		return
	}
	defer s.busy.Unlock()

	start := time.Now()
	conv, err := s.readConversion(r)
	if err != nil {
		s.fail(w, log, err)
		return
	}

	data, result, err := s.convert(conv, log)
	if err != nil {
		s.fail(w, log, err)
		return
	}

	log.Info().
		Str("output", conv.output).
		Int("clones", result.Clones()).
		Dur("elapsed", time.Since(start)).
		Msg("conversion complete")

	w.Header().Set("Content-Type", output.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": conv.output}))
	w.Header().Set(RunIDHeader, runID)
	w.Write(data)
}

// readConversion validates the form in order: template, source,
// configuration, then output name.
func (s *Server) readConversion(r *http.Request) (*conversion, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, rowsheet.NewError(rowsheet.KindParse, "form", err)
	}

	var conv conversion
	var err error

	if conv.template, err = readUpload(r, FieldTemplate, "template file"); err != nil {
		return nil, onField(FieldTemplate, err)
	}
	ext := filepath.Ext(conv.template.name)
	if ext == "" {
		return nil, onField(FieldTemplate, rowsheet.NewError(rowsheet.KindConfigMissing, FieldTemplate,
			fmt.Errorf("cannot infer an extension from %q", conv.template.name)))
	}

	if conv.source, err = readUpload(r, FieldSource, "source file"); err != nil {
		return nil, onField(FieldSource, err)
	}

	if conv.mapping, err = s.readMapping(r); err != nil {
		return nil, onField(FieldConfiguration, err)
	}

	if conv.output, err = outputName(r.FormValue(FieldGenerated), conv.mapping.GeneratedFileName, ext); err != nil {
		return nil, onField(FieldGenerated, err)
	}
	return &conv, nil
}

// readMapping parses the uploaded configuration, falling back to the default
// mapping when none was uploaded.
func (s *Server) readMapping(r *http.Request) (*models.MappingConfig, error) {
	up, err := readUpload(r, FieldConfiguration, "mapping file")
	if err == nil {
		return rowsheet.ParseMapping(up.data)
	}
	if s.mapping == nil || rowsheet.KindOf(err) != rowsheet.KindConfigMissing {
		return nil, err
	}
	return s.mapping.Current()
}

func (s *Server) convert(conv *conversion, log zerolog.Logger) ([]byte, *rowsheet.Result, error) {
	tpl, err := rowsheet.OpenWorkbook(bytes.NewReader(conv.template.data), conv.template.name)
	if err != nil {
		return nil, nil, onField(FieldTemplate, err)
	}
	defer tpl.Close()

	source, err := rowsheet.OpenWorkbook(bytes.NewReader(conv.source.data), conv.source.name)
	if err != nil {
		return nil, nil, onField(FieldSource, err)
	}
	defer source.Close()

	opts := rowsheet.DefaultOptions()
	opts.Duplicates = s.duplicates
	opts.Logger = log

	result, err := rowsheet.Run(rowsheet.Job{Mapping: conv.mapping, Template: tpl, Source: source}, opts)
	if err != nil {
		return nil, nil, err
	}

	data, err := output.Bytes(tpl)
	if err != nil {
		return nil, nil, err
	}
	return data, result, nil
}

// readUpload reads a file field of the form. An absent or empty file is a
// KindConfigMissing error.
func readUpload(r *http.Request, field, what string) (upload, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return upload{}, rowsheet.NewError(rowsheet.KindConfigMissing, field, fmt.Errorf("%s not provided", what))
		}
		return upload{}, rowsheet.NewError(rowsheet.KindIO, field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload{}, rowsheet.NewError(rowsheet.KindIO, field, err)
	}
	if len(data) == 0 {
		return upload{}, rowsheet.NewError(rowsheet.KindConfigMissing, field, fmt.Errorf("%s is empty", what))
	}
	return upload{name: filepath.Base(header.Filename), data: data}, nil
}

// outputName returns the attachment name. A name typed in the form gets the
// template extension; otherwise the mapping's generatedFileName is used, with
// the template extension when it has none.
func outputName(typed, configured, ext string) (string, error) {
	name := strings.TrimSpace(typed)
	if name == "" {
		name = strings.TrimSpace(configured)
		if name != "" && filepath.Ext(name) != "" {
			return filepath.Base(name), nil
		}
	}
	if name == "" {
		return "", rowsheet.NewError(rowsheet.KindConfigMissing, FieldGenerated, errors.New("generated file name not provided"))
	}
	name = filepath.Base(strings.TrimSuffix(name, ext))
	return name + ext, nil
}

func (s *Server) fail(w http.ResponseWriter, log zerolog.Logger, err error) {
	body := errorBody{Error: err.Error()}
	var fe *fieldError
	if errors.As(err, &fe) {
		body.Field = fe.field
	}
	kind := rowsheet.KindOf(err)
	if kind != 0 {
		body.Kind = kind.String()
	}

	status := statusFor(kind)
	log.Error().Err(err).Int("status", status).Str("field", body.Field).Msg("conversion failed")
	s.writeError(w, status, body)
}

func statusFor(kind rowsheet.Kind) int {
	switch kind {
	case rowsheet.KindConfigMissing, rowsheet.KindParse:
		return http.StatusBadRequest
	case rowsheet.KindLookup, rowsheet.KindDuplicateName:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, body errorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("write error response")
	}
}
