package header

import (
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SetCORSHeaders", func() {
	var (
		app *fiber.App
		hh  *Handler
	)

	BeforeEach(func() {
		app = fiber.New()
		hh = NewHandler()
	})

	AfterEach(func() {
		app.Shutdown()
	})

	It("allows any origin", func() {
		app.Post("/test", func(c *fiber.Ctx) error {
			hh.SetCORSHeaders(c)
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/test", nil))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(BeEmpty())
	})
})

var _ = Describe("SetPreflightHeaders", func() {
	var (
		app *fiber.App
		hh  *Handler
	)

	BeforeEach(func() {
		app = fiber.New()
		hh = NewHandler()
	})

	AfterEach(func() {
		app.Shutdown()
	})

	It("sets the full preflight set", func() {
		app.Options("/test", func(c *fiber.Ctx) error {
			hh.SetPreflightHeaders(c)
			return c.SendStatus(fiber.StatusOK)
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/test", nil))
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(Equal("POST, OPTIONS"))
		Expect(resp.Header.Get("Access-Control-Allow-Headers")).To(Equal("Content-Type"))
		Expect(resp.Header.Get("Access-Control-Max-Age")).To(Equal("86400"))
	})
})

var _ = Describe("SetUpstreamRequestHeaders", func() {
	var hh *Handler

	BeforeEach(func() {
		hh = NewHandler()
	})

	It("sets the content type and API key", func() {
		req, err := http.NewRequest(http.MethodPost, "http://upstream/chat", nil)
		Expect(err).NotTo(HaveOccurred())

		hh.SetUpstreamRequestHeaders(req, "secret")

		Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
		Expect(req.Header.Get("X-Api-Key")).To(Equal("secret"))
	})

	It("omits the API key header when no key is configured", func() {
		req, err := http.NewRequest(http.MethodPost, "http://upstream/chat", nil)
		Expect(err).NotTo(HaveOccurred())

		hh.SetUpstreamRequestHeaders(req, "")

		Expect(req.Header.Values(APIKeyHeader)).To(BeEmpty())
	})
})
