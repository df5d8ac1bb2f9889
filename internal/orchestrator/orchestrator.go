// Package orchestrator wires the router, generators, executor, retriever
// and answerer into the single per-request pipeline described by §4.9.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/janreigtorra/castellerq/internal/answer"
	"github.com/janreigtorra/castellerq/internal/rag"
	"github.com/janreigtorra/castellerq/internal/router"
	"github.com/janreigtorra/castellerq/internal/sqlcustom"
	"github.com/janreigtorra/castellerq/internal/sqlexec"
	"github.com/janreigtorra/castellerq/internal/sqltemplate"
	"github.com/janreigtorra/castellerq/internal/telemetry"
	"github.com/janreigtorra/castellerq/types"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const noResultsMessage = "No he trobat cap resultat per a la teva pregunta. Prova de reformular-la o de concretar més la colla, el castell o l'any."

// Config carries the row-count caps §4.10 distinguishes: the UI sees up to
// ResultLimitUI rows, the answerer's prompt only the first ResultLimitLLM.
type Config struct {
	ResultLimitUI  int
	ResultLimitLLM int
}

// Orchestrator implements ProcessQuestion/GetRoute (§6 external interface).
type Orchestrator struct {
	router    *router.Router
	custom    *sqlcustom.Generator
	executor  *sqlexec.Executor
	retriever *rag.Retriever
	answerer  *answer.Answerer
	cfg       Config
	logger    *zap.Logger
	metrics   *telemetry.Metrics
}

func New(r *router.Router, custom *sqlcustom.Generator, executor *sqlexec.Executor, retriever *rag.Retriever, answerer *answer.Answerer, cfg Config, logger *zap.Logger, metrics *telemetry.Metrics) *Orchestrator {
	return &Orchestrator{
		router:    r,
		custom:    custom,
		executor:  executor,
		retriever: retriever,
		answerer:  answerer,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "orchestrator")),
		metrics:   metrics,
	}
}

// GetRoute runs the pipeline through routing only, for the UI's route
// preview (§6).
func (o *Orchestrator) GetRoute(ctx context.Context, question string) (types.RouteResult, error) {
	decision, err := o.router.Decide(ctx, question)
	if err != nil {
		return types.RouteResult{}, err
	}
	return types.RouteResult{
		RouteUsed:          decision.Tool,
		SQLQueryType:       decision.SQLQueryType,
		IdentifiedEntities: decision.Entities,
	}, nil
}

// ProcessQuestion runs the full pipeline end to end (§4.9, §4.11).
func (o *Orchestrator) ProcessQuestion(ctx context.Context, req types.Request) (*types.Response, error) {
	ctx, end := telemetry.StartSpan(ctx, "orchestrator.ProcessQuestion",
		attribute.String("session_id", req.SessionID))
	defer end()

	start := time.Now()

	decision, err := o.router.Decide(ctx, req.Content)
	if err != nil {
		if o.metrics != nil {
			o.metrics.RecordError(ctx, "")
		}
		return nil, err
	}

	resp := &types.Response{
		SessionID:          req.SessionID,
		RouteUsed:          decision.Tool,
		SQLQueryType:       decision.SQLQueryType,
		IdentifiedEntities: &decision.Entities,
		Timestamp:          time.Now(),
	}

	switch decision.Tool {
	case types.ToolDirect:
		resp.Content = decision.DirectResponse
		resp.Response = decision.DirectResponse

	case types.ToolRAG:
		text, err := o.answerRAG(ctx, req.Content)
		if err != nil {
			o.recordError(ctx, decision.Tool)
			return nil, err
		}
		resp.Content = text
		resp.Response = text

	case types.ToolSQL:
		text, table, err := o.answerSQL(ctx, req.Content, decision)
		if err != nil {
			o.recordError(ctx, decision.Tool)
			return nil, err
		}
		resp.Content = text
		resp.Response = text
		resp.TableData = table

	case types.ToolHybrid:
		text, table, err := o.answerHybrid(ctx, req.Content, decision)
		if err != nil {
			o.recordError(ctx, decision.Tool)
			return nil, err
		}
		resp.Content = text
		resp.Response = text
		resp.TableData = table

	default:
		resp.RouteUsed = types.ToolError
		resp.Content = noResultsMessage
		resp.Response = noResultsMessage
	}

	resp.ResponseTimeMS = time.Since(start).Milliseconds()
	if o.metrics != nil {
		o.metrics.RecordRequest(ctx, string(resp.RouteUsed), resp.ResponseTimeMS)
	}
	return resp, nil
}

func (o *Orchestrator) recordError(ctx context.Context, tool types.Tool) {
	if o.metrics != nil {
		o.metrics.RecordError(ctx, string(tool))
	}
}

func (o *Orchestrator) answerRAG(ctx context.Context, question string) (string, error) {
	ctx, end := telemetry.StartSpan(ctx, "orchestrator.answerRAG")
	defer end()

	docs, err := o.retriever.Retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, rag.ErrNoRelevantInformation) {
			return noRelevantInfoMessage, nil
		}
		return "", err
	}
	docContext := rag.AssembleContext(docs)
	return o.answerer.Answer(ctx, answer.Input{Question: question, Tool: types.ToolRAG, DocContext: docContext})
}

const noRelevantInfoMessage = "No tinc prou informació rellevant per respondre aquesta pregunta amb seguretat."

// runSQL builds and executes the query for decision, trying the template
// generator first and falling back to the custom generator per §4.9's
// "Template Generator (fallback Custom)".
func (o *Orchestrator) runSQL(ctx context.Context, question string, decision types.RouterDecision) ([]sqlexec.Row, error) {
	ctx, end := telemetry.StartSpan(ctx, "orchestrator.runSQL",
		attribute.String("sql_query_type", string(decision.SQLQueryType)))
	defer end()

	if result, ok := sqltemplate.Generate(decision.SQLQueryType, decision.Entities); ok {
		return o.executor.ExecuteTemplate(ctx, result.SQL, result.Args)
	}

	sql, params, err := o.custom.Generate(ctx, question, decision.Entities)
	if err != nil {
		return nil, types.NewError(types.ErrQueryError, "no s'ha pogut generar la consulta").WithCause(err)
	}
	return o.executor.ExecuteNamed(ctx, sql, params)
}

func (o *Orchestrator) answerSQL(ctx context.Context, question string, decision types.RouterDecision) (string, *types.TableData, error) {
	rows, err := o.runSQL(ctx, question, decision)
	if err != nil {
		if types.GetErrorCode(err) == types.ErrNoResultsFound {
			return noResultsMessage, nil, nil
		}
		return "", nil, err
	}

	table := answer.BuildTableData(decision.SQLQueryType, string(decision.SQLQueryType), rows, o.cfg.ResultLimitUI)
	tableContext := answer.RenderContextTable(table, o.cfg.ResultLimitLLM)

	text, err := o.answerer.Answer(ctx, answer.Input{
		Question: question, Tool: types.ToolSQL, SQLQueryType: decision.SQLQueryType, TableContext: tableContext,
	})
	if err != nil {
		return "", nil, err
	}
	return text, table, nil
}

// answerHybrid runs both SQL and RAG; a SQL failure degrades gracefully to
// a RAG-only answer rather than failing the whole request (§4.9).
func (o *Orchestrator) answerHybrid(ctx context.Context, question string, decision types.RouterDecision) (string, *types.TableData, error) {
	rows, sqlErr := o.runSQL(ctx, question, decision)

	docs, ragErr := o.retriever.Retrieve(ctx, question)
	var docContext string
	if ragErr == nil {
		docContext = rag.AssembleContext(docs)
	} else if !errors.Is(ragErr, rag.ErrNoRelevantInformation) {
		o.logger.Warn("rag retrieval failed in hybrid path", zap.Error(ragErr))
	}

	if sqlErr != nil {
		if types.GetErrorCode(sqlErr) != types.ErrNoResultsFound {
			o.logger.Warn("sql generation failed in hybrid path, falling back to rag-only", zap.Error(sqlErr))
		}
		text, err := o.answerer.Answer(ctx, answer.Input{Question: question, Tool: types.ToolRAG, DocContext: docContext})
		return text, nil, err
	}

	table := answer.BuildTableData(decision.SQLQueryType, string(decision.SQLQueryType), rows, o.cfg.ResultLimitUI)
	tableContext := answer.RenderContextTable(table, o.cfg.ResultLimitLLM)

	text, err := o.answerer.Answer(ctx, answer.Input{
		Question: question, Tool: types.ToolHybrid, SQLQueryType: decision.SQLQueryType,
		TableContext: tableContext, DocContext: docContext,
	})
	if err != nil {
		return "", nil, err
	}
	return text, table, nil
}
