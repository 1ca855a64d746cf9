package search

import (
	"strings"

	"github.com/fyerfyer/tale-search/internal/corpus"
)

// Lemma 按词元精确匹配搜索整个语料库
// 每个句子最多贡献一条结果，相同原文的句子全局只输出一次
func Lemma(idx *corpus.Index, query string) []Result {
	results := []Result{}
	if query == "" {
		return results
	}

	folded := strings.ToLower(query)
	seen := seenSet{}

	for _, doc := range idx.Documents() {
		for _, sent := range doc.Sentences {
			if !hasLemma(sent, folded) {
				continue
			}
			if !seen.add(sent.Text) {
				continue
			}
			results = append(results, Result{
				DocumentID: doc.ID,
				Title:      doc.Title(),
				Context:    sent.Text,
				Query:      query,
			})
		}
	}

	return results
}

// hasLemma 检查句子中是否有词元等于lemma的词
func hasLemma(sent corpus.Sentence, lemma string) bool {
	for _, tok := range sent.Tokens {
		if tok.Lemma == lemma {
			return true
		}
	}
	return false
}
