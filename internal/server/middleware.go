package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// observe logs each request and records it in the metrics.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// run the error handler now so the status is final
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.HTTPRequests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(route, c.Method()).Observe(elapsed.Seconds())
	}
	s.logger.Debug("request", "method", c.Method(), "path", c.Path(), "status", status, "elapsed", elapsed)
	return nil
}
