package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/menu"
)

// Guard keys for the export operations. Each format locks
// independently, so an HTML export does not block a PDF one.
const (
	opExportHTML = "export-html"
	opExportPDF  = "export-pdf"
	opPrint      = "print"
)

// Exporter renders a document to an external format. Implementations
// own the destination prompt and the actual rendering. Print opens the
// system print dialog instead of picking a destination.
type Exporter interface {
	ExportHTML(ctx context.Context, doc document.Document) error
	ExportPDF(ctx context.Context, doc document.Document) error
	Print(ctx context.Context, doc document.Document) error
}

// ExportDispatcher routes the export menu items. Exports run even when
// a native surface holds focus, and each format is guarded so a second
// trigger while one is rendering is dropped instead of queued.
type ExportDispatcher struct {
	binding
	exporter Exporter
}

func NewExportDispatcher(deps Deps, exporter Exporter) *ExportDispatcher {
	return &ExportDispatcher{binding: newBinding(deps), exporter: exporter}
}

func (d *ExportDispatcher) Setup() {
	gen := d.beginSetup()
	d.register(gen, menu.CmdExportHTML, d.handleAnyFocus(func(menu.Event) {
		d.export(opExportHTML, d.exporter.ExportHTML)
	}))
	d.register(gen, menu.CmdSavePDF, d.handleAnyFocus(func(menu.Event) {
		d.export(opExportPDF, d.exporter.ExportPDF)
	}))
	d.register(gen, menu.CmdPrint, d.handleAnyFocus(func(menu.Event) {
		d.export(opPrint, d.exporter.Print)
	}))
}

func (d *ExportDispatcher) export(op string, run func(context.Context, document.Document) error) {
	doc, ok := d.deps.ActiveDocument()
	if !ok {
		return
	}
	done, err := d.deps.Guard.Do(d.deps.Window, op, func() error {
		return run(context.Background(), doc)
	})
	if !done {
		return
	}
	if err != nil {
		d.logger().Warn("export failed",
			zap.String("op", op),
			zap.String("documentID", doc.ID),
			zap.Error(err))
		return
	}
	d.logger().Info("export finished",
		zap.String("op", op),
		zap.String("documentID", doc.ID))
}
