package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/chatproxy/cmd/chatproxy/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .chatproxy/ config directory")
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			err := newCmd("set", "proxy.upstream", "https://ai.example.com/chat").Execute()
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`upstream = "https://ai.example.com/chat"`))
		})

		It("masks the API key in its output", func() {
			err := newCmd("set", "proxy.api_key", "sk-very-secret-1234").Execute()
			Expect(err).NotTo(HaveOccurred())

			Expect(out.String()).NotTo(ContainSubstring("sk-very-secret"))
			Expect(ansi.Strip(out.String())).To(ContainSubstring("***************1234"))
		})

		It("rejects unknown keys", func() {
			err := newCmd("set", "invalid_key", "value").Execute()
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects an invalid timeout", func() {
			err := newCmd("set", "proxy.timeout", "soon").Execute()
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			err := newCmd("set", "proxy.upstream").Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(newCmd("set", "proxy.timeout", "45s").Execute()).To(Succeed())

			out.Reset()
			Expect(newCmd("get", "proxy.timeout").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("45s"))
		})

		It("reports an unset key", func() {
			Expect(newCmd("get", "proxy.upstream").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("masks the API key", func() {
			Expect(newCmd("set", "proxy.api_key", "sk-very-secret-1234").Execute()).To(Succeed())

			out.Reset()
			Expect(newCmd("get", "proxy.api_key").Execute()).To(Succeed())
			Expect(out.String()).NotTo(ContainSubstring("sk-very-secret"))
		})

		It("rejects unknown keys", func() {
			err := newCmd("get", "invalid_key").Execute()
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			err := newCmd("get").Execute()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists defaults when no config exists", func() {
			Expect(newCmd("list").Execute()).To(Succeed())

			Expect(out.String()).To(ContainSubstring(`proxy.listen`))
			Expect(out.String()).To(ContainSubstring(`":8080"`))
			Expect(out.String()).To(ContainSubstring(`"30s"`))
		})

		It("lists set values with the API key masked", func() {
			Expect(newCmd("set", "proxy.api_key", "sk-very-secret-1234").Execute()).To(Succeed())
			Expect(newCmd("set", "proxy.upstream", "https://ai.example.com/chat").Execute()).To(Succeed())

			out.Reset()
			Expect(newCmd("list").Execute()).To(Succeed())
			Expect(out.String()).To(ContainSubstring("https://ai.example.com/chat"))
			Expect(out.String()).NotTo(ContainSubstring("sk-very-secret"))
		})

		It("rejects any arguments", func() {
			err := newCmd("list", "extra").Execute()
			Expect(err).To(HaveOccurred())
		})
	})
})
