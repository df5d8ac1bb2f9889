// Package sqltemplate composes a single parameterized SELECT from a fixed
// set of templates, one per recognized sql_query_type (§4.4). Every
// template is grounded on llm_sql.py's _create_query_templates, reauthored
// to bind every entity value as a query parameter instead of interpolating
// it into the SQL text.
package sqltemplate

import (
	"fmt"
	"strings"

	"github.com/janreigtorra/castellerq/internal/entities"
	"github.com/janreigtorra/castellerq/types"
)

// Result is a ready-to-execute query: SQL with "?" placeholders in
// left-to-right order matching Args.
type Result struct {
	SQL  string
	Args []any
}

// threeWayJoin matches a construction's code against all three equivalent
// spellings the scored-construction table carries, which is what lets the
// join use per-column indexes instead of a computed expression (§4.4).
const threeWayJoin = `LEFT JOIN puntuacions p ON (
	c.castell_name = p.castell_code
	OR c.castell_name = p.castell_code_external
	OR c.castell_name = p.castell_code_name
)`

const pointsCase = `CASE
	WHEN c.status = 'Descarregat' THEN COALESCE(p.punts_descarregat, 0)
	WHEN c.status = 'Carregat' THEN COALESCE(p.punts_carregat, 0)
	ELSE 0
END`

// lowValuePillarCode is excluded from event point totals (§4.4 "excludes a
// designated low-value pillar code") — the bare four-person pillar, worth
// nothing competitively but always present in a performance's tally.
const lowValuePillarCode = "Pde4"

// Generate builds the query for sqlType from ents, returning ok=false (the
// "template rejected" sentinel of §4.4) when a required entity kind is
// missing, so the orchestrator can fall back to the custom generator.
func Generate(sqlType types.SQLQueryType, ents types.Entities) (*Result, bool) {
	switch sqlType {
	case types.SQLBestEvent:
		return bestEvent(ents), true
	case types.SQLBestConstruction:
		return bestConstruction(ents), true
	case types.SQLConstructionHistory:
		return constructionHistory(ents), true
	case types.SQLLocationPerformances:
		return locationPerformances(ents), true
	case types.SQLYearSummary:
		if len(ents.Years) == 0 {
			return nil, false
		}
		return yearSummary(ents), true
	case types.SQLFirstConstruction:
		if len(ents.Constructions) == 0 {
			return nil, false
		}
		return firstConstruction(ents), true
	case types.SQLConstructionStatistics:
		if len(ents.Constructions) == 0 {
			return nil, false
		}
		return constructionStatistics(ents), true
	case types.SQLContestRanking:
		return contestRanking(ents), true
	case types.SQLContestHistory:
		return contestHistory(ents), true
	default:
		return nil, false
	}
}

func constructionNames(cs []types.Construction) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = entities.CodeToName(c.Code)
	}
	return names
}

// constructionStatuses returns the DB-literal (Catalan) status values of cs,
// since the status column stores "Descarregat"/"Carregat"/etc., not the
// internal English Status enum.
func constructionStatuses(cs []types.Construction) []string {
	var out []string
	for _, c := range cs {
		if c.Status != nil {
			out = append(out, c.Status.DBValue())
		}
	}
	return out
}

// bestEvent ranks events by the sum of their top-4 construction point
// totals per team, excluding the low-value pillar (millor_diada).
func bestEvent(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))
	diada := apply(&args, eqOrIn("e.name", ents.Events))

	having := ""
	if len(ents.Constructions) == 1 {
		c := ents.Constructions[0]
		if c.Status != nil {
			having = "AND STRING_AGG(p.castell_code || ' (' || c.status || ')', ', ') LIKE ?"
			args = append(args, fmt.Sprintf("%%%s (%s)%%", entities.CodeToName(c.Code), c.Status.DBValue()))
		} else {
			having = "AND STRING_AGG(p.castell_code, ', ') LIKE ?"
			args = append(args, "%"+entities.CodeToName(c.Code)+"%")
		}
	} else if len(ents.Constructions) > 1 {
		var conds []string
		for _, c := range ents.Constructions {
			if c.Status != nil {
				conds = append(conds, "STRING_AGG(p.castell_code || ' (' || c.status || ')', ', ') LIKE ?")
				args = append(args, fmt.Sprintf("%%%s (%s)%%", entities.CodeToName(c.Code), c.Status.DBValue()))
			} else {
				conds = append(conds, "STRING_AGG(p.castell_code, ', ') LIKE ?")
				args = append(args, "%"+entities.CodeToName(c.Code)+"%")
			}
		}
		having = "AND (" + strings.Join(conds, " OR ") + ")"
	}

	sql := fmt.Sprintf(`
WITH castells_punts AS (
	SELECT
		e.id AS event_id, e.name AS event_name, e.date AS event_date,
		e.place AS event_place, e.city AS event_city,
		co.id AS colla_id, co.name AS colla_name,
		c.id AS castell_id, c.castell_name, c.status,
		%s AS punts,
		ROW_NUMBER() OVER (PARTITION BY e.id, co.id ORDER BY %s DESC) AS rn
	FROM events e
	JOIN event_colles ec ON e.id = ec.event_fk
	JOIN colles co ON ec.colla_fk = co.id
	JOIN castells c ON ec.id = c.event_colla_fk
	%s
	WHERE 1=1 %s %s %s %s
)
SELECT event_id, event_name, event_date, colla_name, event_place, event_city,
	STRING_AGG(CASE WHEN castell_name != '%s' THEN castell_name || ' (' || status || ')' ELSE NULL END, ', ' ORDER BY punts DESC) AS castells_fets,
	COUNT(castell_id) AS num_castells,
	SUM(CASE WHEN rn <= 4 AND castell_name != '%s' THEN punts ELSE 0 END) AS total_punts
FROM castells_punts
GROUP BY event_id, event_name, event_date, event_place, event_city, colla_name
HAVING 1=1 %s
ORDER BY total_punts DESC
LIMIT 5`, pointsCase, pointsCase, threeWayJoin, colla, year, place, diada, lowValuePillarCode, lowValuePillarCode, having)

	return &Result{SQL: sql, Args: args}
}

func bestConstruction(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))
	status := apply(&args, eqOrIn("c.status", constructionStatuses(ents.Constructions)))

	sql := fmt.Sprintf(`
SELECT e.name AS event_name, e.date, e.place, e.city, co.name AS colla_name,
	c.castell_name, c.status,
	COALESCE(p.punts_descarregat, 0) AS punts_descarregat,
	COALESCE(p.punts_carregat, 0) AS punts_carregat
FROM castells c
JOIN event_colles ec ON c.event_colla_fk = ec.id
JOIN events e ON ec.event_fk = e.id
JOIN colles co ON ec.colla_fk = co.id
%s
WHERE 1=1 %s %s %s %s
ORDER BY %s DESC
LIMIT 5`, threeWayJoin, colla, year, place, status, pointsCase)

	return &Result{SQL: sql, Args: args}
}

func constructionHistory(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	castell := apply(&args, eqOrIn("c.castell_name", constructionNames(ents.Constructions)))
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))
	status := apply(&args, eqOrIn("c.status", constructionStatuses(ents.Constructions)))

	sql := fmt.Sprintf(`
SELECT c.castell_name, c.status, COUNT(*) AS count_occurrences, co.name AS colla_name,
	MIN(e.date) AS first_date, MAX(e.date) AS last_date,
	STRING_AGG(DISTINCT e.city, ', ') AS cities
FROM castells c
JOIN event_colles ec ON c.event_colla_fk = ec.id
JOIN events e ON ec.event_fk = e.id
JOIN colles co ON ec.colla_fk = co.id
%s
WHERE 1=1 %s %s %s %s %s
GROUP BY c.castell_name, c.status, co.name
ORDER BY count_occurrences DESC, c.castell_name, c.status
LIMIT 10`, threeWayJoin, colla, castell, year, place, status)

	return &Result{SQL: sql, Args: args}
}

func locationPerformances(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))

	sql := fmt.Sprintf(`
SELECT EXTRACT(YEAR FROM TO_DATE(e.date, 'DD/MM/YYYY')) AS year,
	e.name AS event_name, e.date, e.place, e.city, co.name AS colla_name,
	COUNT(c.id) AS num_castells,
	STRING_AGG(CASE WHEN c.castell_name != '%s' THEN c.castell_name || ' (' || c.status || ')' ELSE NULL END, ', ' ORDER BY %s DESC) AS castells_fets
FROM events e
JOIN event_colles ec ON e.id = ec.event_fk
JOIN colles co ON ec.colla_fk = co.id
JOIN castells c ON ec.id = c.event_colla_fk
%s
WHERE 1=1 %s %s %s
GROUP BY e.id, e.name, e.date, e.place, e.city, co.name
ORDER BY SUM(CASE WHEN c.castell_name != '%s' THEN %s ELSE 0 END) DESC, e.date DESC
LIMIT 5`, lowValuePillarCode, pointsCase, threeWayJoin, colla, year, place, lowValuePillarCode, pointsCase)

	return &Result{SQL: sql, Args: args}
}

func yearSummary(ents types.Entities) *Result {
	var args []any
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))
	colla := apply(&args, eqOrIn("co.name", ents.Teams))

	sql := fmt.Sprintf(`
SELECT co.name AS colla_name,
	COUNT(DISTINCT e.id) AS num_actuacions,
	COUNT(c.id) AS num_castells,
	SUM(CASE WHEN c.status = 'Descarregat' THEN 1 ELSE 0 END) AS castells_descarregats,
	SUM(CASE WHEN c.status = 'Carregat' THEN 1 ELSE 0 END) AS castells_carregats
FROM colles co
JOIN event_colles ec ON co.id = ec.colla_fk
JOIN events e ON ec.event_fk = e.id
JOIN castells c ON ec.id = c.event_colla_fk
%s
WHERE 1=1 %s %s %s
GROUP BY co.id, co.name
ORDER BY SUM(CASE WHEN c.castell_name != '%s' THEN %s ELSE 0 END) DESC
LIMIT 10`, threeWayJoin, year, place, colla, lowValuePillarCode, pointsCase)

	return &Result{SQL: sql, Args: args}
}

func firstConstruction(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	castell := apply(&args, eqOrIn("c.castell_name", constructionNames(ents.Constructions)))
	place := apply(&args, likeColumn("e.city", ents.Places))
	diada := apply(&args, eqOrIn("e.name", ents.Events))
	status := apply(&args, eqOrIn("c.status", constructionStatuses(ents.Constructions)))

	sql := fmt.Sprintf(`
SELECT EXTRACT(YEAR FROM TO_DATE(e.date, 'DD/MM/YYYY')) AS year,
	e.name AS event_name, e.date, e.place, e.city, co.name AS colla_name,
	c.castell_name, c.status
FROM castells c
JOIN event_colles ec ON c.event_colla_fk = ec.id
JOIN events e ON ec.event_fk = e.id
JOIN colles co ON ec.colla_fk = co.id
%s
WHERE 1=1 %s %s %s %s %s
ORDER BY e.date ASC
LIMIT 1`, threeWayJoin, colla, castell, place, diada, status)

	return &Result{SQL: sql, Args: args}
}

func constructionStatistics(ents types.Entities) *Result {
	var args []any
	colla := apply(&args, eqOrIn("co.name", ents.Teams))
	castell := apply(&args, eqOrIn("c.castell_name", constructionNames(ents.Constructions)))
	year := apply(&args, yearFilter("e.date", ents.Years, false))
	place := apply(&args, likeColumn("e.city", ents.Places))
	diada := apply(&args, eqOrIn("e.name", ents.Events))

	sql := fmt.Sprintf(`
SELECT c.castell_name,
	COUNT(CASE WHEN c.status = 'Descarregat' THEN 1 END) AS cops_descarregat,
	COUNT(CASE WHEN c.status = 'Carregat' THEN 1 END) AS cops_carregat,
	COUNT(CASE WHEN c.status = 'Intent desmuntat' THEN 1 END) AS cops_intent_desmuntat,
	COUNT(CASE WHEN c.status = 'Intent' THEN 1 END) AS cops_intent,
	MIN(CASE WHEN c.status = 'Descarregat' THEN e.date END) AS primera_data_descarregat,
	MIN(CASE WHEN c.status = 'Carregat' THEN e.date END) AS primera_data_carregat,
	COUNT(DISTINCT CASE WHEN c.status = 'Descarregat' THEN co.name END) AS colles_descarregat,
	COUNT(DISTINCT CASE WHEN c.status = 'Carregat' THEN co.name END) AS colles_carregat,
	COUNT(DISTINCT CASE WHEN c.status = 'Intent desmuntat' OR c.status = 'Intent' THEN co.name END) AS colles_intentat,
	SUBSTR(STRING_AGG(DISTINCT CASE WHEN c.status = 'Descarregat' THEN co.name END, ', '), 1, 400) AS primeres_colles_descarregat,
	SUBSTR(STRING_AGG(DISTINCT CASE WHEN c.status = 'Carregat' THEN co.name END, ', '), 1, 400) AS primeres_colles_carregat,
	SUBSTR(STRING_AGG(DISTINCT CASE WHEN c.status = 'Intent desmuntat' OR c.status = 'Intent' THEN co.name END, ', '), 1, 400) AS primeres_colles_intentat,
	COALESCE(p.punts_descarregat, 0) AS punts_descarregat,
	COALESCE(p.punts_carregat, 0) AS punts_carregat
FROM castells c
JOIN event_colles ec ON c.event_colla_fk = ec.id
JOIN events e ON ec.event_fk = e.id
JOIN colles co ON ec.colla_fk = co.id
%s
WHERE 1=1 %s %s %s %s %s
GROUP BY c.castell_name, p.punts_descarregat, p.punts_carregat
LIMIT 1`, threeWayJoin, colla, castell, year, place, diada)

	return &Result{SQL: sql, Args: args}
}

func contestRanking(ents types.Entities) *Result {
	var args []any
	edition := apply(&args, eqOrIn("c.edition", ents.Editions))
	jornada := apply(&args, likeColumn("cr.jornada", ents.Tracks))
	colla := apply(&args, eqOrIn("cr.colla_name", ents.Teams))
	position := apply(&args, eqOrInInt("cr.position", ents.Positions))
	year := apply(&args, eqOrInInt(`cr."any"`, ents.Years))
	castell := apply(&args, contestJSONMatch("castell", constructionNames(ents.Constructions)))
	status := apply(&args, contestJSONMatch("status", constructionStatuses(ents.Constructions)))

	sql := fmt.Sprintf(`
SELECT c.edition, c.title, c.date, c.location, c.plaça, c.colla_guanyadora,
	cr.position, cr.colla_name, cr.total_points, cr.jornada,
	cr.ronda_1_json AS primera_ronda, cr.ronda_2_json AS segona_ronda,
	cr.ronda_3_json AS tercera_ronda, cr.ronda_4_json AS quarta_ronda,
	cr.ronda_5_json AS cinquena_ronda, cr.ronda_6_json AS sisena_ronda,
	cr.ronda_7_json AS setena_ronda
FROM concurs c
JOIN concurs_rankings cr ON c.id = cr.concurs_fk
WHERE 1=1 %s %s %s %s %s %s %s
ORDER BY cr.position ASC
LIMIT 5`, edition, jornada, colla, position, year, castell, status)

	return &Result{SQL: sql, Args: args}
}

func contestHistory(ents types.Entities) *Result {
	var args []any
	edition := apply(&args, eqOrIn("c.edition", ents.Editions))
	location := apply(&args, likeColumn("c.location", ents.Places))
	year := apply(&args, eqOrInInt("c.\"any\"", ents.Years))

	sql := fmt.Sprintf(`
SELECT c.edition, c.title, c.date, c.location, c.plaça, c.colla_guanyadora,
	c.num_colles, c.castells_intentats, c.maxim_castell, c.espectadors,
	COUNT(cr.id) AS colles_participants,
	AVG(cr.total_points) AS avg_points, MAX(cr.total_points) AS max_points, MIN(cr.total_points) AS min_points
FROM concurs c
LEFT JOIN concurs_rankings cr ON c.id = cr.concurs_fk
WHERE 1=1 %s %s %s
GROUP BY c.id, c.edition, c.title, c.date, c.location, c.plaça, c.colla_guanyadora, c.num_colles, c.castells_intentats, c.maxim_castell, c.espectadors
ORDER BY c.date DESC
LIMIT 10`, edition, location, year)

	return &Result{SQL: sql, Args: args}
}

// yearFilter renders the year filter for a performance-table date column:
// extract(year from to_date(date,'DD/MM/YYYY')). The third parameter is
// ignored and the filter always uses that date expression; competition
// templates build their own year filter directly against cr."any"/c."any".
func yearFilter(dateColumn string, years []int, _ bool) filter {
	if len(years) == 0 {
		return filter{}
	}
	expr := fmt.Sprintf("EXTRACT(YEAR FROM TO_DATE(%s, 'DD/MM/YYYY'))", dateColumn)
	return eqOrInInt(expr, years)
}

// contestJSONMatch searches every per-round JSON column for an exact
// "key": "value" occurrence, the same substring search the original used
// to avoid matching a shorter code as a prefix of a longer one.
func contestJSONMatch(key string, values []string) filter {
	if len(values) == 0 {
		return filter{}
	}
	roundCols := []string{
		"cr.ronda_1_json", "cr.ronda_2_json", "cr.ronda_3_json", "cr.ronda_4_json",
		"cr.ronda_5_json", "cr.ronda_6_json", "cr.ronda_7_json", "cr.rondes_json",
	}
	var valueConds []string
	var args []any
	for _, v := range values {
		var colConds []string
		pattern := fmt.Sprintf(`%%"%s": "%s"%%`, key, v)
		for _, col := range roundCols {
			colConds = append(colConds, col+" LIKE ?")
			args = append(args, pattern)
		}
		valueConds = append(valueConds, "("+strings.Join(colConds, " OR ")+")")
	}
	return filter{clause: "AND (" + strings.Join(valueConds, " OR ") + ")", args: args}
}
