package compiler_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/canonical"
	"github.com/thc1006/O-RAN-Intent-MANO-for-Network-Slicing/intent-compiler/pkg/compiler"
)

const urllcIntent = `{
  "intentId": "urllc-001",
  "serviceType": "ultra-reliable-low-latency",
  "targetSite": "both",
  "resourceProfile": "high-performance",
  "sla": {"availability": 99.999, "latency": 1, "throughput": 100, "reliability": 99.9999},
  "metadata": {"owner": "ran-team"}
}`

var _ = Describe("Intent compilation to disk", func() {
	var (
		outputDir   string
		intentPath  string
		newCompiler func() *compiler.Compiler
	)

	BeforeEach(func() {
		base := GinkgoT().TempDir()
		outputDir = filepath.Join(base, "rendered", "krm")
		intentPath = filepath.Join(base, "intent.json")
		Expect(os.WriteFile(intentPath, []byte(urllcIntent), 0o600)).To(Succeed())

		newCompiler = func() *compiler.Compiler {
			c, err := compiler.New(compiler.Options{
				OutputDir:     outputDir,
				Timestamp:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				EnableCaching: true,
			})
			Expect(err).NotTo(HaveOccurred())
			return c
		}
	})

	compileAndSave := func() string {
		c := newCompiler()
		result, err := c.Translate(intentPath)
		Expect(err).NotTo(HaveOccurred())
		report, err := c.Save(result)
		Expect(err).NotTo(HaveOccurred())
		return report.ManifestPath
	}

	It("writes one directory per site and the manifest", func() {
		manifestPath := compileAndSave()
		Expect(manifestPath).To(Equal(filepath.Join(outputDir, "manifest.json")))

		for _, site := range []string{"edge1", "edge2"} {
			entries, err := os.ReadDir(filepath.Join(outputDir, site))
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			sort.Strings(names)
			Expect(names).To(Equal([]string{
				"intent-urllc-001-" + site + "-config-map.yaml",
				"kustomization.yaml",
				"slice-urllc-001-" + site + "-network-slice.yaml",
				"urllc-001-" + site + "-provisioning-request.yaml",
			}))
		}

		data, err := os.ReadFile(manifestPath)
		Expect(err).NotTo(HaveOccurred())

		var m map[string]interface{}
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m).To(HaveKeyWithValue("intentId", "urllc-001"))
		Expect(m).To(HaveKeyWithValue("checksumAlgorithm", "sha256"))
		Expect(m).To(HaveKeyWithValue("targetSites", ConsistOf("edge1", "edge2")))
		Expect(m["resourceCounts"]).To(Equal(map[string]interface{}{"edge1": 4.0, "edge2": 4.0}))
	})

	It("records checksums that match the bytes on disk", func() {
		manifestPath := compileAndSave()

		data, err := os.ReadFile(manifestPath)
		Expect(err).NotTo(HaveOccurred())
		var m struct {
			GeneratedFiles map[string]struct {
				Checksum  string `json:"checksum"`
				SizeBytes int    `json:"sizeBytes"`
			} `json:"generatedFiles"`
		}
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m.GeneratedFiles).To(HaveLen(8))

		for rel, entry := range m.GeneratedFiles {
			content, err := os.ReadFile(filepath.Join(outputDir, rel))
			Expect(err).NotTo(HaveOccurred())
			Expect(canonical.Checksum(content)).To(Equal(entry.Checksum), rel)
			Expect(content).To(HaveLen(entry.SizeBytes), rel)
		}
	})

	It("leaves every mtime untouched on a repeated run", func() {
		compileAndSave()

		past := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
		var files []string
		Expect(filepath.Walk(outputDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				files = append(files, path)
			}
			return err
		})).To(Succeed())
		Expect(files).To(HaveLen(9))
		for _, f := range files {
			Expect(os.Chtimes(f, past, past)).To(Succeed())
		}

		compileAndSave()

		for _, f := range files {
			info, err := os.Stat(f)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.ModTime().Equal(past)).To(BeTrue(), f)
		}
	})

	It("embeds the defaulted intent in each ConfigMap", func() {
		compileAndSave()

		data, err := os.ReadFile(filepath.Join(outputDir, "edge2", "intent-urllc-001-edge2-config-map.yaml"))
		Expect(err).NotTo(HaveOccurred())

		var cm struct {
			Data map[string]string `yaml:"data"`
		}
		Expect(yaml.Unmarshal(data, &cm)).To(Succeed())
		Expect(cm.Data).To(HaveKeyWithValue("site", "edge2"))

		tree, err := canonical.DecodeTree([]byte(cm.Data["intent.json"]))
		Expect(err).NotTo(HaveOccurred())
		original, err := canonical.DecodeTree([]byte(urllcIntent))
		Expect(err).NotTo(HaveOccurred())
		Expect(tree).To(Equal(original))
	})

	It("builds each site with kustomize", func() {
		c := newCompiler()
		result, err := c.Translate(intentPath)
		Expect(err).NotTo(HaveOccurred())
		_, err = c.Save(result)
		Expect(err).NotTo(HaveOccurred())

		rendered, err := c.Verify(result)
		Expect(err).NotTo(HaveOccurred())
		Expect(rendered).To(HaveLen(2))
		for _, r := range rendered {
			Expect(r.Success).To(BeTrue())
			Expect(r.Resources).To(HaveLen(3))
		}
	})
})
