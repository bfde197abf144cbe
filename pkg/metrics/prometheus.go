package metrics

/* adapted from https://github.com/zsais/go-gin-prometheus
edits:
- zap logger instead of the standard library logger
- no push gateway, basic auth or referer label
- collectors register on an injectable prometheus.Registerer
*/

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var httpLabels = []string{"code", "method", "url"}

var (
	reqCnt = &Metric{ID: "reqCnt", Name: "req_total", Type: "counter_vec", Args: httpLabels,
		Description: "How many HTTP requests processed, partitioned by status code and HTTP method."}
	reqDur = &Metric{ID: "reqDur", Name: "req_dur_ms", Type: "histogram_vec", Args: httpLabels,
		Description: "The HTTP request latencies in milliseconds."}
	resSz = &Metric{ID: "resSz", Name: "resp_sz_bytes", Type: "summary_vec", Args: httpLabels,
		Description: "The HTTP response sizes in bytes."}
	reqSz = &Metric{ID: "reqSz", Name: "req_sz_bytes", Type: "summary_vec", Args: httpLabels,
		Description: "The HTTP request sizes in bytes."}
)

const defaultMetricPath = "/metrics"

// RequestCounterURLLabelMappingFn controls the cardinality of the "url" label,
// e.g. mapping "/payments/verify/abc-123" to "/payments/verify/:tx_ref".
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus holds the HTTP collectors and where they are served.
type Prometheus struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	router        *gin.Engine
	listenAddress string
	registerer    prometheus.Registerer
	log           *zap.SugaredLogger

	MetricsPath             string
	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn
}

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn
	Logger                  *zap.SugaredLogger
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewPrometheus registers the HTTP collectors under subsystem.
func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsPath:             options.MetricsPath,
		ReqCntURLLabelMappingFn: options.ReqCntURLLabelMappingFn,
		registerer:              options.Registerer,
		log:                     options.Logger,
	}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.ReqCntURLLabelMappingFn == nil {
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string { return c.Request.URL.Path }
	}
	if p.log == nil {
		p.log = zap.NewNop().Sugar()
	}
	if p.registerer == nil {
		p.registerer = prometheus.DefaultRegisterer
	}

	p.reqCnt = mustVec[*prometheus.CounterVec](p, reqCnt, options.Subsystem)
	p.reqDur = mustVec[*prometheus.HistogramVec](p, reqDur, options.Subsystem)
	p.reqSz = mustVec[*prometheus.SummaryVec](p, reqSz, options.Subsystem)
	p.resSz = mustVec[*prometheus.SummaryVec](p, resSz, options.Subsystem)
	return p
}

// mustVec registers def, falling back to an unregistered collector so the
// middleware keeps working when registration fails.
func mustVec[T prometheus.Collector](p *Prometheus, def *Metric, subsystem string) T {
	c := NewMetric(def, subsystem)
	registered, err := register(p.registerer, c)
	if err != nil {
		p.log.Errorw("metric_register_failed", "metric", def.Name, "err", err)
		return c.(T)
	}
	return registered.(T)
}

// SetListenAddress exposes metrics on a separate address. If not set, they are
// exposed on the gin engine passed to Use.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
	if p.listenAddress != "" {
		p.router = gin.New()
	}
}

// SetMetricsPath mounts the scrape endpoint.
func (p *Prometheus) SetMetricsPath(e *gin.Engine) {
	if p.listenAddress == "" {
		e.GET(p.MetricsPath, prometheusHandler())
		return
	}
	p.router.GET(p.MetricsPath, prometheusHandler())
	go func() {
		if err := p.router.Run(p.listenAddress); err != nil {
			p.log.Errorw("metrics server stopped", "addr", p.listenAddress, "err", err)
		}
	}()
}

// Use adds the middleware to a gin engine.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	p.SetMetricsPath(e)
}

func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSz := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := MillisecondsSince(start)
		resSz := float64(c.Writer.Size())

		url := p.ReqCntURLLabelMappingFn(c)

		p.reqDur.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url).Inc()
		p.reqSz.WithLabelValues(status, c.Request.Method, url).Observe(float64(reqSz))
		p.resSz.WithLabelValues(status, c.Request.Method, url).Observe(resSz)
	}
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MillisecondsSince returns the elapsed time since start in fractional milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}

	s += len(r.Method)
	s += len(r.Proto)
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	s += len(r.Host)

	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}
