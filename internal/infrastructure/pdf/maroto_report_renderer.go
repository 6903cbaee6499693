// Package pdf renderiza relatórios tabulares do back office em A4 usando
// Maroto v2: título, cabeçalho de colunas e linhas zebradas.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/locafleet/locafleet-api/internal/application/export"
)

var (
	colorPrimary = &props.Color{Red: 16, Green: 78, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReportRenderer implementa export.Renderer usando Maroto v2.
type MarotoReportRenderer struct{}

// NewMarotoReportRenderer constrói o renderizador.
func NewMarotoReportRenderer() *MarotoReportRenderer { return &MarotoReportRenderer{} }

// Render gera o PDF e devolve seus bytes.
func (r *MarotoReportRenderer) Render(_ context.Context, t *export.Table) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("pdf: relatório sem colunas")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(t.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(t.Title))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	widths := columnWidths(len(t.Columns))
	m.AddRows(headerRow(t.Columns, widths))
	for _, cells := range t.Rows {
		m.AddRows(dataRow(cells, widths))
	}

	m.AddRows(line.NewRow(2))
	m.AddRows(footerRow(len(t.Rows)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// titleRow cabeçalho do relatório com data de emissão à direita.
func titleRow(title string) core.Row {
	return row.New(12).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Emitido em "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

// headerRow cabeçalho da tabela.
func headerRow(labels []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, label := range labels {
		cols = append(cols, col.New(widths[i]).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Left: 1,
			}),
		))
	}
	return row.New(7).Add(cols...)
}

// dataRow uma linha de dados.
func dataRow(cells []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(widths))
	for i, w := range widths {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		cols = append(cols, col.New(w).Add(
			text.New(v, props.Text{Size: 8, Top: 1, Left: 1}),
		))
	}
	return row.New(6).Add(cols...)
}

func footerRow(total int) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de registros: %d", total), props.Text{
			Size: 8, Color: colorGray, Top: 1,
		}),
	))
}

// columnWidths reparte as 12 colunas da grade do Maroto entre as colunas do
// relatório; a sobra vai para a primeira.
func columnWidths(n int) []int {
	base := 12 / n
	rest := 12 % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
	}
	widths[0] += rest
	return widths
}
