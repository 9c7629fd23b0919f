package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/etnz/fundsxml"
	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md loads, and every .md file is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error = %v", err)
	}
	sorted := append([]string(nil), listed...)
	sort.Strings(sorted)
	if diff := cmp.Diff(all, sorted); diff != "" {
		t.Errorf("topics listed in readme.md mismatch (-files +listed):\n%s", diff)
	}

	star, err := GetTopic(All)
	if err != nil {
		t.Fatalf("GetTopic(*) error = %v", err)
	}
	for _, topic := range all {
		content, _ := GetTopic(topic)
		if !strings.Contains(star, content) {
			t.Errorf("GetTopic(*) is missing topic %q", topic)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Error("GetTopic(nope) succeeded")
	}
}

// documentedRules returns the rule IDs used as headings in rules.md.
func documentedRules(t *testing.T) map[string]bool {
	t.Helper()
	content, err := os.ReadFile("rules.md")
	if err != nil {
		t.Fatal(err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	ids := make(map[string]bool)
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok || h.Level != 3 {
			return ast.WalkContinue, nil
		}
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			cs, ok := c.(*ast.CodeSpan)
			if !ok {
				continue
			}
			var b strings.Builder
			for s := cs.FirstChild(); s != nil; s = s.NextSibling() {
				if txt, ok := s.(*ast.Text); ok {
					b.Write(txt.Segment.Value(content))
				}
			}
			ids[b.String()] = true
		}
		return ast.WalkSkipChildren, nil
	})
	return ids
}

func TestRulesAreDocumented(t *testing.T) {
	documented := documentedRules(t)
	known := make(map[string]bool)
	for _, r := range fundsxml.Rules() {
		known[r.ID] = true
		if !documented[r.ID] {
			t.Errorf("rule %s is not documented in rules.md", r.ID)
		}
	}
	for id := range documented {
		if !known[id] {
			t.Errorf("rules.md documents an unknown rule %s", id)
		}
	}
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// HELPER

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// buildFxv builds the fxv executable into tmp and returns its path.
func buildFxv(t *testing.T, tmp string) string {
	t.Helper()
	output := filepath.Join(tmp, "fxv")
	if err := exec.Command("go", "build", "-o", output, "../fxv/").Run(); err != nil {
		t.Fatalf("failed to build fxv command: %v", err)
	}
	return output
}

// parseMarkdown returns the executable fenced blocks of a markdown file.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Info.Segment.Value(content))
		switch lang {
		case bashCheck, bashSetup, bashRun, consoleCheck:
		default:
			return ast.WalkContinue, nil
		}
		var body strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			body.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Type:    lang,
			Content: body.String(),
			File:    file,
			Line:    lineNumber(content, fcb.Info.Segment.Start),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber computes the line of a source offset.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// blockRunner holds what is needed to run the blocks of one file.
type blockRunner struct {
	env            []string
	previousOutput string
	tmpFolder      string
}

func (r *blockRunner) runBlock(t *testing.T, block *Block) {
	t.Helper()

	if block.Type == consoleCheck {
		want := strings.TrimSpace(block.Content)
		got := strings.TrimSpace(r.previousOutput)
		if want != got {
			t.Errorf("%s:%d: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q\n", block.File, block.Line, got, want, got, want)
		}
		return
	}
	if block.Type == bashSetup {
		r.tmpFolder = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+block.Content)
	cmd.Dir = r.tmpFolder
	cmd.Env = r.env
	output, err := cmd.CombinedOutput()
	if block.Type == bashRun {
		r.previousOutput = string(output)
	}
	if err != nil {
		switch block.Type {
		case bashSetup, bashRun:
			t.Fatalf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		case bashCheck:
			t.Errorf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		}
	}
}

// runBlocks executes the scenario of a markdown file.
func runBlocks(t *testing.T, file string) {
	t.Helper()
	blocks := parseMarkdown(t, file)
	if len(blocks) == 0 {
		return
	}

	fxvPath := buildFxv(t, t.TempDir())
	newPath := fmt.Sprintf("PATH=%s%c%s", filepath.Dir(fxvPath), os.PathListSeparator, os.Getenv("PATH"))
	env := append(os.Environ(), newPath, "FXV_LOG_LEVEL=error", "FXV_PROFILE=", "FXV_TOLERANCES=", "NO_COLOR=1")

	r := blockRunner{env: env, tmpFolder: t.TempDir()}
	for _, block := range blocks {
		r.runBlock(t, block)
	}
}
