package servecmder_test

import (
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	servecmder "github.com/papercomputeco/chatproxy/cmd/chatproxy/serve"
)

// newServeCmd returns a serve command carrying the root's persistent flags.
func newServeCmd(args ...string) *cobra.Command {
	cmd := servecmder.NewServeCmd()
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .chatproxy/ config directory")
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd
}

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	DescribeTable("registers flags from the shared registry",
		func(name, shorthand, defValue string) {
			flag := servecmder.NewServeCmd().Flags().Lookup(name)
			Expect(flag).NotTo(BeNil())
			Expect(flag.Shorthand).To(Equal(shorthand))
			Expect(flag.DefValue).To(Equal(defValue))
		},
		Entry("listen", "listen", "l", ":8080"),
		Entry("upstream", "upstream", "u", ""),
		Entry("api-key", "api-key", "", ""),
		Entry("timeout", "timeout", "", "30s"),
		Entry("log-file", "log-file", "", ""),
	)
})

var _ = Describe("Serve command validation", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv("CHATPROXY_PROXY_UPSTREAM", "")
		GinkgoT().Setenv("CHATPROXY_PROXY_TIMEOUT", "")
	})

	It("refuses to start without an upstream", func() {
		err := newServeCmd("--config-dir", tmpDir).Execute()
		Expect(err).To(MatchError(ContainSubstring("upstream URL is required")))
	})

	It("rejects an invalid timeout flag", func() {
		err := newServeCmd("--config-dir", tmpDir, "-u", "http://localhost:9999/chat", "--timeout", "soon").Execute()
		Expect(err).To(MatchError(ContainSubstring("proxy.timeout")))
	})

	It("rejects a non-positive timeout", func() {
		err := newServeCmd("--config-dir", tmpDir, "-u", "http://localhost:9999/chat", "--timeout", "0s").Execute()
		Expect(err).To(MatchError(ContainSubstring("must be positive")))
	})

	It("reads the upstream from config.toml and the timeout from the environment", func() {
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(`
[proxy]
upstream = "http://localhost:9999/chat"
`), 0o600)
		Expect(err).NotTo(HaveOccurred())
		GinkgoT().Setenv("CHATPROXY_PROXY_TIMEOUT", "never")

		err = newServeCmd("--config-dir", tmpDir).Execute()
		Expect(err).To(MatchError(ContainSubstring("proxy.timeout")))
		Expect(err).NotTo(MatchError(ContainSubstring("upstream URL is required")))
	})

	It("rejects positional arguments", func() {
		err := newServeCmd("--config-dir", tmpDir, "extra").Execute()
		Expect(err).To(HaveOccurred())
	})
})
