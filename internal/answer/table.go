package answer

import (
	"fmt"
	"strings"

	"github.com/janreigtorra/castellerq/internal/sqlexec"
	"github.com/janreigtorra/castellerq/types"
)

// nullSentinel renders in place of a NULL cell (§4.10 "nulls render as a
// sentinel").
const nullSentinel = "—"

// columnProjection is one sql_query_type's fixed column order and titles.
type columnProjection struct {
	columns []string
	titles  map[string]string
}

var projections = map[types.SQLQueryType]columnProjection{
	types.SQLBestEvent: {
		columns: []string{"event_name", "event_date", "colla_name", "event_place", "event_city", "castells_fets", "num_castells", "total_punts"},
		titles: map[string]string{
			"event_name": "Diada", "event_date": "Data", "colla_name": "Colla",
			"event_place": "Lloc", "event_city": "Població", "castells_fets": "Castells fets",
			"num_castells": "Núm. castells", "total_punts": "Punts totals",
		},
	},
	types.SQLBestConstruction: {
		columns: []string{"event_name", "date", "colla_name", "castell_name", "status", "punts_descarregat", "punts_carregat"},
		titles: map[string]string{
			"event_name": "Diada", "date": "Data", "colla_name": "Colla",
			"castell_name": "Castell", "status": "Resultat",
			"punts_descarregat": "Punts descarregat", "punts_carregat": "Punts carregat",
		},
	},
	types.SQLConstructionHistory: {
		columns: []string{"castell_name", "status", "count_occurrences", "colla_name", "first_date", "last_date", "cities"},
		titles: map[string]string{
			"castell_name": "Castell", "status": "Resultat", "count_occurrences": "Vegades",
			"colla_name": "Colla", "first_date": "Primera vegada", "last_date": "Última vegada", "cities": "Poblacions",
		},
	},
	types.SQLLocationPerformances: {
		columns: []string{"year", "event_name", "date", "place", "city", "colla_name", "num_castells", "castells_fets"},
		titles: map[string]string{
			"year": "Any", "event_name": "Diada", "date": "Data", "place": "Lloc", "city": "Població",
			"colla_name": "Colla", "num_castells": "Núm. castells", "castells_fets": "Castells fets",
		},
	},
	types.SQLYearSummary: {
		columns: []string{"colla_name", "num_actuacions", "num_castells", "castells_descarregats", "castells_carregats"},
		titles: map[string]string{
			"colla_name": "Colla", "num_actuacions": "Actuacions", "num_castells": "Castells",
			"castells_descarregats": "Descarregats", "castells_carregats": "Carregats",
		},
	},
	types.SQLFirstConstruction: {
		columns: []string{"year", "event_name", "date", "place", "city", "colla_name", "castell_name", "status"},
		titles: map[string]string{
			"year": "Any", "event_name": "Diada", "date": "Data", "place": "Lloc", "city": "Població",
			"colla_name": "Colla", "castell_name": "Castell", "status": "Resultat",
		},
	},
	types.SQLConstructionStatistics: {
		columns: []string{"castell_name", "cops_descarregat", "cops_carregat", "cops_intent_desmuntat", "cops_intent",
			"primera_data_descarregat", "primera_data_carregat", "colles_descarregat", "colles_carregat",
			"colles_intentat", "punts_descarregat", "punts_carregat"},
		titles: map[string]string{
			"castell_name": "Castell", "cops_descarregat": "Cops descarregat", "cops_carregat": "Cops carregat",
			"cops_intent_desmuntat": "Intents desmuntats", "cops_intent": "Intents",
			"primera_data_descarregat": "Primer descarregat", "primera_data_carregat": "Primer carregat",
			"colles_descarregat": "Colles (descarregat)", "colles_carregat": "Colles (carregat)",
			"colles_intentat": "Colles (intent)", "punts_descarregat": "Punts descarregat", "punts_carregat": "Punts carregat",
		},
	},
	types.SQLContestRanking: {
		columns: []string{"position", "colla_name", "total_points"},
		titles:   map[string]string{"position": "Posició", "colla_name": "Colla", "total_points": "Punts"},
	},
	types.SQLContestHistory: {
		columns: []string{"edition", "title", "date", "location", "colla_guanyadora", "num_colles"},
		titles: map[string]string{
			"edition": "Edició", "title": "Concurs", "date": "Data", "location": "Lloc",
			"colla_guanyadora": "Colla guanyadora", "num_colles": "Núm. colles",
		},
	},
}

// BuildTableData projects rows into the UI's fixed column order with
// display titles (§4.10). Custom-generated queries have no fixed
// projection, so every returned column is shown as-is.
func BuildTableData(sqlType types.SQLQueryType, title string, rows []sqlexec.Row, resultLimitUI int) *types.TableData {
	if len(rows) == 0 {
		return nil
	}
	if resultLimitUI > 0 && len(rows) > resultLimitUI {
		rows = rows[:resultLimitUI]
	}

	proj, ok := projections[sqlType]
	if !ok {
		return genericTableData(title, rows)
	}

	data := &types.TableData{Title: title, Columns: make([]string, len(proj.columns))}
	for i, col := range proj.columns {
		if label, ok := proj.titles[col]; ok {
			data.Columns[i] = label
		} else {
			data.Columns[i] = col
		}
	}

	for _, row := range rows {
		rendered := make([]string, len(proj.columns))
		for i, col := range proj.columns {
			rendered[i] = stringifyCell(row, col)
		}
		data.Rows = append(data.Rows, rendered)
	}
	return data
}

func genericTableData(title string, rows []sqlexec.Row) *types.TableData {
	data := &types.TableData{Title: title, Columns: rows[0].Columns}
	for _, row := range rows {
		rendered := make([]string, len(row.Values))
		for i := range row.Values {
			rendered[i] = stringifyValue(row.Values[i])
		}
		data.Rows = append(data.Rows, rendered)
	}
	return data
}

func stringifyCell(row sqlexec.Row, column string) string {
	v, ok := row.Get(column)
	if !ok {
		return nullSentinel
	}
	return stringifyValue(v)
}

func stringifyValue(v any) string {
	if v == nil {
		return nullSentinel
	}
	switch val := v.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RenderContextTable renders rows as a compact pipe-free block the
// answerer's user message embeds as its tabular context (§4.8 user
// message: "a pre-rendered tabular context (SQL path)").
func RenderContextTable(data *types.TableData, maxRows int) string {
	if data == nil {
		return ""
	}
	rows := data.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	var b strings.Builder
	for _, row := range rows {
		parts := make([]string, len(row))
		for i, cell := range row {
			if i < len(data.Columns) {
				parts[i] = fmt.Sprintf("%s: %s", data.Columns[i], cell)
			} else {
				parts[i] = cell
			}
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
