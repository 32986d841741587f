package main

import "fmt"

var sampleApps = []string{"billing-api", "user-service"}

// pngHeader is enough of a PNG to fail UTF-8 validation.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00, 0x00, 0x0d, 0xff}

// seedRepos populates the store with sample branches.
// Called during init before the server accepts requests.
func seedRepos(s *store) {
	for _, app := range sampleApps {
		s.put("acme", app, "main", appRepo(app))
	}
	s.put("acme", "site", "main", siteRepo())
	s.put("acme", "site", "feature/dark-mode", append(siteRepo(), repoFile{
		Path:    "src/theme.ts",
		Content: []byte("export const theme = \"dark\";\n"),
	}))
}

func appRepo(app string) []repoFile {
	return sortedFiles(map[string]string{
		"README.md":                 fmt.Sprintf("# %s\n\nPart of the acme platform.\n", app),
		".github/workflows/ci.yaml": ciWorkflow(),
		"go.mod":                    fmt.Sprintf("module github.com/acme/%s\n\ngo 1.25\n", app),
		"main.go":                   mainGo(app),
	})
}

func siteRepo() []repoFile {
	files := sortedFiles(map[string]string{
		"README.md":                      "# site\n",
		"docs/guide.md":                  "## Guide\n\nRun `npm start`.\n",
		"index.js":                       "console.log(\"hello\");\n",
		"src/a.ts":                       "export const a = 1;\n",
		"node_modules/left-pad/index.js": "module.exports = (s) => s;\n",
	})
	return append(files, repoFile{Path: "assets/logo.png", Content: pngHeader})
}

func mainGo(app string) string {
	return fmt.Sprintf(`package main

import "fmt"

func main() {
	fmt.Println(%q)
}
`, app)
}

func ciWorkflow() string {
	return `name: CI
on:
  push:
    branches: [main]
  pull_request:
    branches: [main]
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Build
        run: make build
      - name: Test
        run: make test
`
}
