package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/config"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/index"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/internal/telemetry"
	"github.com/Rishi-Bethi-007/FIA-regulations-RAG-base-system/provider"
)

// rerankFloor keeps the rerank stage wide enough for season balancing even
// with a small final budget.
const rerankFloor = 12

// Citation points at one evidence chunk in an answer.
type Citation struct {
	Ref        int    `json:"ref"`
	Source     string `json:"source"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
	Season     int    `json:"season,omitempty"`
}

// Answer is the result of a full pipeline run.
type Answer struct {
	ID        string      `json:"id"`
	Question  string      `json:"question"`
	Text      string      `json:"text"`
	Citations []Citation  `json:"citations"`
	Evidence  []index.Hit `json:"evidence"`
	Plan      QueryPlan   `json:"plan"`
}

// Pipeline runs the full question-to-answer flow: plan, rewrite, recall,
// rerank, select, generate.
type Pipeline struct {
	planner   *Planner
	retriever *Retriever
	reranker  *Reranker
	llm       provider.LLMProvider
	cfg       config.RetrievalConfig
	genModel  string
	tele      *telemetry.Telemetry
	logger    *log.Logger
}

// NewPipeline wires the pipeline stages. reranker may be nil when reranking
// is disabled; tele may be nil.
func NewPipeline(planner *Planner, retriever *Retriever, reranker *Reranker, llm provider.LLMProvider, genModel string, cfg config.RetrievalConfig, tele *telemetry.Telemetry, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(log.Writer(), "[PIPELINE] ", log.LstdFlags)
	}
	return &Pipeline{
		planner:   planner,
		retriever: retriever,
		reranker:  reranker,
		llm:       llm,
		cfg:       cfg,
		genModel:  genModel,
		tele:      tele,
		logger:    logger,
	}
}

// Search runs the recall stage only and returns the raw candidates. Used by
// the debug command and the search endpoint.
func (p *Pipeline) Search(ctx context.Context, question string) (QueryPlan, []index.Hit, error) {
	plan, err := p.planner.Plan(question)
	if err != nil {
		return QueryPlan{}, nil, err
	}
	variants := Rewrite(question)
	hits := p.retriever.Retrieve(ctx, variants, plan, p.cfg.RecallK)
	return plan, hits, nil
}

// Ask answers a question with citations into the indexed regulations.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Answer, error) {
	plan, err := p.planner.Plan(question)
	if err != nil {
		return nil, err
	}
	p.tele.RecordQuestion(plan.IsComparison)

	variants := Rewrite(question)
	p.logger.Printf("question planned: comparison=%v seasons=%v variants=%d", plan.IsComparison, plan.Seasons, len(variants))

	recalled := p.retriever.Retrieve(ctx, variants, plan, p.cfg.RecallK)

	rerankBudget := p.cfg.TopK
	if rerankBudget < rerankFloor {
		rerankBudget = rerankFloor
	}
	var ranked []index.Hit
	if p.reranker != nil {
		ranked = p.reranker.Rerank(ctx, question, recalled, rerankBudget)
	} else {
		ranked = recalled
		if len(ranked) > rerankBudget {
			ranked = ranked[:rerankBudget]
		}
	}

	var evidence []index.Hit
	if plan.IsComparison {
		evidence = SelectEvidence(ranked, plan.Seasons, p.cfg.TopK, p.cfg.MinPerSeason)
	} else {
		evidence = SelectEvidence(ranked, nil, p.cfg.TopK, 0)
	}
	p.tele.RecordEvidence(len(evidence))

	text, err := p.generate(ctx, question, evidence)
	if err != nil {
		return nil, fmt.Errorf("answer generation: %w", err)
	}

	citations := make([]Citation, len(evidence))
	for i, h := range evidence {
		citations[i] = Citation{
			Ref:        i + 1,
			Source:     h.Meta.Source,
			Page:       h.Meta.Page,
			ChunkIndex: h.Meta.ChunkIndex,
			Season:     h.Meta.Season,
		}
	}

	return &Answer{
		ID:        uuid.New().String(),
		Question:  question,
		Text:      text,
		Citations: citations,
		Evidence:  evidence,
		Plan:      plan,
	}, nil
}

func (p *Pipeline) generate(ctx context.Context, question string, evidence []index.Hit) (string, error) {
	if len(evidence) == 0 {
		return "I don't know based on the provided documents.", nil
	}

	var blocks strings.Builder
	for i, h := range evidence {
		fmt.Fprintf(&blocks, "CHUNK %d | source=%s | page=%d | chunk=%d\n%s\n\n",
			i+1, h.Meta.Source, h.Meta.Page, h.Meta.ChunkIndex, h.Text)
	}

	prompt := fmt.Sprintf(`You answer questions about FIA Formula 1 regulations using ONLY the provided excerpts.

Excerpts:
%s
Question: %s

Rules:
- Cite excerpts as [1], [2], ... matching the CHUNK numbers.
- If the excerpts do not contain the answer, reply exactly: I don't know based on the provided documents.
- When comparing seasons, state the difference per season explicitly.`, blocks.String(), question)

	return p.llm.Generate(ctx, p.genModel, prompt)
}
