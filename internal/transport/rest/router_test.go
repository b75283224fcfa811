package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/guard-deployment/db"
	"github.com/frahmantamala/guard-deployment/internal/coverage"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	"github.com/frahmantamala/guard-deployment/internal/leave"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	"github.com/frahmantamala/guard-deployment/internal/site"
	"github.com/frahmantamala/guard-deployment/internal/transport/rest"
	"github.com/frahmantamala/guard-deployment/internal/transport/swagger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

var _ = Describe("Router", func() {
	var router *chi.Mux

	BeforeEach(func() {
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, "sqlite", rest.Handlers{
			Guard:      &guard.Handler{},
			Site:       &site.Handler{},
			Deployment: &deployment.Handler{},
			Leave:      &leave.Handler{},
			Coverage:   &coverage.Handler{},
			Rotation:   &rotation.Handler{},
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("documents every api route", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		var undocumented []string
		err = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, "/api/v1") {
				return nil
			}
			path := strings.TrimSuffix(strings.TrimPrefix(route, "/api/v1"), "/")
			item := doc.Paths.Find(path)
			if item == nil || item.GetOperation(method) == nil {
				undocumented = append(undocumented, method+" "+path)
			}
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(undocumented).To(BeEmpty())
	})

	It("serves the openapi document", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, swagger.DocumentPath, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})

	It("answers ping without a database", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("reports not ready without a store", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		var report rest.StoreReadiness
		Expect(json.NewDecoder(rec.Body).Decode(&report)).To(Succeed())
		Expect(report.Ready).To(BeFalse())
		Expect(report.Driver).To(Equal("sqlite"))
		Expect(report.Error).To(Equal("store not configured"))
	})

	It("reports ready while the store answers", func() {
		gdb, err := db.OpenSQLiteMemory()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		defer sqlDB.Close()

		withStore := chi.NewRouter()
		rest.RegisterAllRoutes(withStore, sqlDB, "sqlite", rest.Handlers{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

		rec := httptest.NewRecorder()
		withStore.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var report rest.StoreReadiness
		Expect(json.NewDecoder(rec.Body).Decode(&report)).To(Succeed())
		Expect(report.Ready).To(BeTrue())
		Expect(report.Error).To(BeEmpty())
	})
})
