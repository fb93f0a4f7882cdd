package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// RubricScorer grades a sentence on the 0..3 cognate rubric.
type RubricScorer struct {
	Client     *Client
	SourceName string
	TargetName string
}

// ScoreRubric asks the model for a JSON verdict and validates it.
func (r *RubricScorer) ScoreRubric(ctx context.Context, sentence string) (difficulty.Rubric, error) {
	resp, err := r.Client.Chat(ctx, "", rubricPrompt(r.SourceName, r.TargetName, sentence))
	if err != nil {
		return difficulty.Rubric{}, err
	}
	return ParseRubric(resp)
}

// ParseRubric decodes a rubric verdict from a model response.
func ParseRubric(resp string) (difficulty.Rubric, error) {
	raw, err := ExtractJSON(resp)
	if err != nil {
		return difficulty.Rubric{}, fmt.Errorf("rubric: %w: %v", internalerr.ErrInvalidArgument, err)
	}
	var out difficulty.Rubric
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return difficulty.Rubric{}, fmt.Errorf("rubric: decode: %w: %v", internalerr.ErrInvalidArgument, err)
	}
	if err := out.Validate(); err != nil {
		return difficulty.Rubric{}, err
	}
	return out, nil
}

// ScoreRubricBatch grades several sentences in one request. The verdicts
// come back in input order.
func (r *RubricScorer) ScoreRubricBatch(ctx context.Context, sentences []string) ([]difficulty.Rubric, error) {
	if len(sentences) == 0 {
		return nil, nil
	}
	resp, err := r.Client.Chat(ctx, "", rubricBatchPrompt(r.SourceName, r.TargetName, sentences))
	if err != nil {
		return nil, err
	}
	return ParseRubricBatch(resp, len(sentences))
}

// ParseRubricBatch decodes exactly n verdicts from a model response. Every
// verdict must pass Validate.
func ParseRubricBatch(resp string, n int) ([]difficulty.Rubric, error) {
	raw, err := ExtractJSONArray(resp)
	if err != nil {
		return nil, fmt.Errorf("rubric batch: %w: %v", internalerr.ErrInvalidArgument, err)
	}
	var out []difficulty.Rubric
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("rubric batch: decode: %w: %v", internalerr.ErrInvalidArgument, err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("rubric batch: got %d verdicts for %d sentences: %w", len(out), n, internalerr.ErrInvalidArgument)
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("rubric batch: verdict %d: %w", i+1, err)
		}
	}
	return out, nil
}

func rubricBatchPrompt(src, dst string, sentences []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert in %s to %s translation. I will give you %d sentences in %s, and I want you to assign one of the following scores to each of them:\n", src, dst, len(sentences), src)
	fmt.Fprintf(&b, "0 (lowest score): Totally unintelligible to an %s speaker.\n", dst)
	fmt.Fprintf(&b, "1: Contains some cognate words, but is largely unintelligible to an %s speaker.\n", dst)
	fmt.Fprintf(&b, "2: Contains many cognate words. An %s speaker could partially understand the sentence but would probably miss a few important words or phrases.\n", dst)
	fmt.Fprintf(&b, "3 (highest score): An %s speaker with zero %s knowledge can guess, with ease, the entire meaning of the sentence. Assign this score sparingly.\n\n", dst, src)
	b.WriteString("Please format your response as a JSON array with one object per sentence, in order:\n")
	b.WriteString(`[{"sentence": "<Sentence>", "reasoning": "<Reasoning>", "cognate_words": [<List of Cognate Words>], "score": <Score>}]`)
	b.WriteString("\n\nHere are the sentences:\n")
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	b.WriteString("Do not include Markdown formatting in your response.")
	return b.String()
}

func rubricPrompt(src, dst, sentence string) string {
	return fmt.Sprintf(`You are an expert in %[1]s to %[2]s translation. I will give you one sentence in %[1]s, and I want you to assign one of the following scores to it:
0 (lowest score): Totally unintelligible to an %[2]s speaker.
1: Contains some cognate words, but is largely unintelligible to an %[2]s speaker. The cognates might allow them to guess the general topic but not the actual meaning.
2: Contains many cognate words. An %[2]s speaker could understand the main idea but would miss important details or nuances that change the meaning.
3 (highest score): An %[2]s speaker with zero %[1]s knowledge can guess, with ease, the entire meaning of the sentence. The small connecting words can be ignored without losing meaning.

Important scoring notes:
- Score 1 sentences have cognates but leave major meaning gaps
- Score 2 sentences are mostly understandable but have subtle meaning changes due to missed words
- Score 3 should be assigned sparingly, only when missed words don't change meaning

Please format your response in JSON format as follows:
{
  "sentence": "<Sentence>",
  "reasoning": "<Reasoning for the sentence>",
  "cognate_words": [<List of Cognate Words>],
  "score": <Score for the Sentence>
}

Here is the sentence:
%[3]s
`, src, dst, sentence)
}
