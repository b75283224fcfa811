package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/guard-deployment/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("parses and validates", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("Guard Deployment API"))
		Expect(doc.Paths.Find("/coverage/gaps")).NotTo(BeNil())
		Expect(doc.Paths.Find("/guards/{id}/end-deployment")).NotTo(BeNil())
	})

	It("serves the embedded yaml", func() {
		rec := httptest.NewRecorder()
		swagger.DocumentHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, swagger.DocumentPath, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
		Expect(rec.Body.Bytes()).To(Equal(swagger.Document()))
	})
})
