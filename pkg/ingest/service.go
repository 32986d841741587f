package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrName = "github.com/tilsley/repotext"

var errNoBody = errors.New("upstream returned no body")

// Service runs the fetch, collect, decode, filter and classify stages for
// one request at a time. It holds no per-request state, so one Service can
// serve concurrent requests.
type Service struct {
	fetcher ArchiveFetcher
	log     *slog.Logger
	tracer  trace.Tracer

	archiveBytes metric.Int64Counter
	filesDecoded metric.Int64Counter
	filesEmitted metric.Int64Counter
	failures     metric.Int64Counter
	duration     metric.Float64Histogram
}

// NewService creates a Service that reads archives from fetcher.
func NewService(fetcher ArchiveFetcher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	m := otel.Meter(instrName)

	archiveBytes, _ := m.Int64Counter("repotext.archive.bytes",
		metric.WithDescription("Bytes of archive data collected"),
		metric.WithUnit("By"))
	filesDecoded, _ := m.Int64Counter("repotext.files.decoded",
		metric.WithDescription("Files decoded from fetched archives"))
	filesEmitted, _ := m.Int64Counter("repotext.files.emitted",
		metric.WithDescription("Files surviving the path filter"))
	failures, _ := m.Int64Counter("repotext.ingest.failures",
		metric.WithDescription("Failed ingests by error kind"))
	duration, _ := m.Float64Histogram("repotext.ingest.duration",
		metric.WithDescription("Ingest duration in milliseconds"),
		metric.WithUnit("ms"))

	return &Service{
		fetcher:      fetcher,
		log:          log,
		tracer:       otel.Tracer(instrName),
		archiveBytes: archiveBytes,
		filesDecoded: filesDecoded,
		filesEmitted: filesEmitted,
		failures:     failures,
		duration:     duration,
	}
}

// Ingest fetches the requested branch archive and returns the filtered,
// classified files. Any error is terminal: no partial result is returned.
func (s *Service) Ingest(ctx context.Context, req ArchiveRequest) (*Result, error) {
	if req.Owner == "" {
		return nil, s.fail(ctx, MissingParameterError{Name: "owner"})
	}
	if req.Repo == "" {
		return nil, s.fail(ctx, MissingParameterError{Name: "repo"})
	}
	if req.Branch == "" {
		req.Branch = DefaultBranch
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ingest.archive", trace.WithAttributes(
		attribute.String("repo.owner", req.Owner),
		attribute.String("repo.name", req.Repo),
		attribute.String("repo.branch", req.Branch),
	))
	defer span.End()

	res, err := s.run(ctx, req)
	s.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, s.fail(ctx, err)
	}

	span.SetAttributes(
		attribute.Int("archive.bytes", res.ArchiveBytes),
		attribute.Int("archive.files", res.TotalFiles),
		attribute.Int("archive.files_emitted", len(res.Files)),
	)
	s.archiveBytes.Add(ctx, int64(res.ArchiveBytes))
	s.filesDecoded.Add(ctx, int64(res.TotalFiles))
	s.filesEmitted.Add(ctx, int64(len(res.Files)))
	s.log.DebugContext(ctx, "archive ingested",
		"owner", req.Owner, "repo", req.Repo, "branch", req.Branch,
		"bytes", res.ArchiveBytes, "files", res.TotalFiles, "emitted", len(res.Files))
	return res, nil
}

func (s *Service) run(ctx context.Context, req ArchiveRequest) (*Result, error) {
	data, err := s.collect(ctx, req)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "ingest.decode")
	fs, err := Decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	span.End()

	paths := req.Filter().Apply(fs.paths)
	files := make([]ClassifiedFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, Classify(p, fs.content[p]))
	}

	return &Result{
		Files:        files,
		TotalFiles:   fs.Len(),
		ArchiveBytes: len(data),
	}, nil
}

func (s *Service) collect(ctx context.Context, req ArchiveRequest) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "ingest.fetch")
	defer span.End()

	body, err := s.fetcher.Fetch(ctx, req.Owner, req.Repo, req.Branch)
	if err != nil {
		var te TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, TransportError{Err: err}
	}
	if body == nil {
		return nil, TransportError{Err: errNoBody}
	}
	defer body.Close() //nolint:errcheck // body is fully read or abandoned

	return Collect(body)
}

func (s *Service) fail(ctx context.Context, err error) error {
	s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", errorKind(err))))
	return err
}

func errorKind(err error) string {
	var (
		missing   MissingParameterError
		transport TransportError
		malformed MalformedArchiveError
	)
	switch {
	case errors.As(err, &missing):
		return "missing_parameter"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &malformed):
		return "malformed_archive"
	default:
		return "other"
	}
}
