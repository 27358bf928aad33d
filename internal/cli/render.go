package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/roach88/outliner/internal/model"
)

const timeLayout = time.RFC3339

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func renderDatabases(w io.Writer, entries []model.DatabaseEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No databases.")
		return
	}
	tw := newTable(w, "ID", "NAME", "PATH", "CREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Path, e.CreatedAt.Format(timeLayout))
	}
	tw.Flush()
}

func renderDatabase(w io.Writer, e model.DatabaseEntry) {
	fmt.Fprintf(w, "ID:      %s\n", e.ID)
	fmt.Fprintf(w, "Name:    %s\n", e.Name)
	fmt.Fprintf(w, "Path:    %s\n", e.Path)
	fmt.Fprintf(w, "Created: %s\n", e.CreatedAt.Format(timeLayout))
}

func renderPages(w io.Writer, pages []model.Page) {
	if len(pages) == 0 {
		fmt.Fprintln(w, "No pages.")
		return
	}
	tw := newTable(w, "ID", "TITLE", "CREATED")
	for _, p := range pages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Title, p.CreatedAt.Format(timeLayout))
	}
	tw.Flush()
}

func renderPage(w io.Writer, p model.Page) {
	fmt.Fprintf(w, "ID:      %s\n", p.ID)
	fmt.Fprintf(w, "Title:   %s\n", p.Title)
	fmt.Fprintf(w, "Created: %s\n", p.CreatedAt.Format(timeLayout))
}

func renderBlocks(w io.Writer, blocks []model.Block) {
	if len(blocks) == 0 {
		fmt.Fprintln(w, "No blocks.")
		return
	}
	tw := newTable(w, "ID", "POS", "PARENT", "CONTENT")
	for _, b := range blocks {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", b.ID, b.Position, parentLabel(b), oneLine(b.Content))
	}
	tw.Flush()
}

func renderBlock(w io.Writer, b model.Block) {
	fmt.Fprintf(w, "ID:       %s\n", b.ID)
	fmt.Fprintf(w, "Parent:   %s\n", parentLabel(b))
	fmt.Fprintf(w, "Position: %d\n", b.Position)
	fmt.Fprintf(w, "Created:  %s\n", b.CreatedAt.Format(timeLayout))
	fmt.Fprintf(w, "Content:  %s\n", b.Content)
}

func parentLabel(b model.Block) string {
	if b.PageID != "" {
		return "page:" + b.PageID
	}
	return "block:" + b.ParentBlockID
}

// renderOutline prints the tree one block per line, indented two spaces
// per level.
func renderOutline(w io.Writer, title string, nodes []*model.Node) {
	fmt.Fprintln(w, title)
	if len(nodes) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			fmt.Fprintf(w, "%s- %s  [%s]\n", strings.Repeat("  ", depth+1), oneLine(n.Block.Content), n.Block.ID)
			walk(n.Children, depth+1)
		}
	}
	walk(nodes, 0)
}

func renderWorkspaces(w io.Writer, workspaces []model.Workspace) {
	tw := newTable(w, "ID", "NAME", "COLOR")
	for _, ws := range workspaces {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", ws.ID, ws.Name, ws.Color)
	}
	tw.Flush()
}

func renderWorkspace(w io.Writer, ws model.Workspace) {
	fmt.Fprintf(w, "ID:    %d\n", ws.ID)
	fmt.Fprintf(w, "Name:  %s\n", ws.Name)
	fmt.Fprintf(w, "Color: %s\n", ws.Color)
}

func renderStats(w io.Writer, s model.StoreStats) {
	fmt.Fprintf(w, "Workspaces: %d\n", s.Workspaces)
	fmt.Fprintf(w, "Pages:      %d (indexed %d)\n", s.Pages, s.IndexedPages)
	fmt.Fprintf(w, "Blocks:     %d (indexed %d)\n", s.Blocks, s.IndexedBlocks)
}

// oneLine collapses newlines so multi-line content fits a table row.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
