package datatable

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/ecociel/taskview/lib/query"
	"github.com/ecociel/taskview/lib/telemetry"
	"github.com/ecociel/taskview/metrics"
	restful "github.com/emicklei/go-restful/v3"
)

const mimeForm = "application/x-www-form-urlencoded"

type store interface {
	query.Source
	Get(id string) (*domain.Task, bool)
}

type Response struct {
	Draw            int   `json:"draw"`
	Data            []Row `json:"data"`
	RecordsTotal    int   `json:"recordsTotal"`
	RecordsFiltered int   `json:"recordsFiltered"`
}

// Service answers the table widget's requests against a task store.
type Service struct {
	store   store
	metrics metrics.QueryMetrics
	format  FormatFunc
	logger  *slog.Logger
}

type Option func(*Service)

func WithFormat(format FormatFunc) Option {
	return func(s *Service) { s.format = format }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store store, m metrics.QueryMetrics, opts ...Option) *Service {
	s := &Service{store: store, metrics: m, logger: telemetry.Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/tasks").Produces(restful.MIME_JSON)

	params := []*restful.Parameter{
		ws.QueryParameter("draw", "request token echoed in the response").DataType("integer").Required(true),
		ws.QueryParameter("start", "offset of the first row").DataType("integer").Required(true),
		ws.QueryParameter("length", "page size, -1 for all rows").DataType("integer").Required(true),
		ws.QueryParameter("search[value]", "search terms, key:value or bare text"),
		ws.QueryParameter("order[0][column]", "index of the sort column").DataType("integer").Required(true),
		ws.QueryParameter("order[0][dir]", "asc or desc").Required(true),
		ws.QueryParameter("taskname", "task name substring"),
		ws.QueryParameter("workername", "worker hostname substring"),
	}

	get := ws.GET("/datatable").To(s.datatable).
		Doc("page of tasks for a server-side table").
		Writes(Response{})
	post := ws.POST("/datatable").To(s.datatable).
		Consumes(mimeForm).
		Doc("page of tasks for a server-side table, parameters in the form body").
		Writes(Response{})
	for _, p := range params {
		get.Param(p)
	}
	ws.Route(get)
	ws.Route(post)

	ws.Route(ws.GET("/{task-id}").To(s.task).
		Doc("one task").
		Param(ws.PathParameter("task-id", "identifier of the task")).
		Writes(Row{}))
	return ws
}

func (s *Service) datatable(req *restful.Request, resp *restful.Response) {
	start := time.Now()
	ctx := req.Request.Context()

	if err := req.Request.ParseForm(); err != nil {
		s.reject(req, resp, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	params, err := ParseParams(req.Request.Form)
	if err != nil {
		s.reject(req, resp, err)
		return
	}

	res := query.Run(ctx, s.store, params.Query)

	rows := make([]Row, 0, len(res.Page))
	for _, t := range res.Page {
		rows = append(rows, Project(applyFormat(ctx, s.logger, s.format, t)))
	}
	s.metrics.QueryServed(res.Total, res.Filtered, time.Since(start))

	if err := resp.WriteHeaderAndJson(http.StatusOK, Response{
		Draw:            params.Draw,
		Data:            rows,
		RecordsTotal:    res.Total,
		RecordsFiltered: res.Filtered,
	}, restful.MIME_JSON); err != nil {
		s.logger.ErrorContext(ctx, "write datatable response", "error", err)
	}
}

func (s *Service) reject(req *restful.Request, resp *restful.Response, err error) {
	s.metrics.QueryRejected()
	s.logger.InfoContext(req.Request.Context(), "rejected datatable request", "error", err)
	_ = resp.WriteErrorString(http.StatusBadRequest, err.Error())
}

func (s *Service) task(req *restful.Request, resp *restful.Response) {
	ctx := req.Request.Context()
	id := req.PathParameter("task-id")

	t, ok := s.store.Get(id)
	if !ok {
		_ = resp.WriteErrorString(http.StatusNotFound, fmt.Sprintf("Unknown task '%s'", id))
		return
	}
	if err := resp.WriteHeaderAndJson(http.StatusOK, Project(applyFormat(ctx, s.logger, s.format, t)), restful.MIME_JSON); err != nil {
		s.logger.ErrorContext(ctx, "write task response", "task_id", id, "error", err)
	}
}
