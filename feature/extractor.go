// Package feature 把一本图书的文本属性转换为可比较的特征表示。
//
// 权重策略（字段重复次数即权重）：
//   - 书名 ×2、作者 ×2：读者找相似书时书名与作者强相关
//   - 类别 ×3：同类图书是最强的相似信号
//   - 简介 ×1：信息量大但噪声也大，权重最低
//
// 向量模型消费加权文本（语料级 TF-IDF 负责进一步强调），
// 关键词模型消费截断后的词元集。两者共享同一抽取入口，保证可解释。
package feature

import (
	"strings"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/pkg/textutil"
)

// 字段权重。调整权重会直接改变推荐口径，动之前先跑温度对比。
const (
	titleWeight       = 2
	authorWeight      = 2
	genreWeight       = 3
	descriptionWeight = 1
)

// 关键词模式的截断阈值：限制对比成本，并消除长简介带来的偏置。
const (
	maxTitleTokens    = 3 // 最多保留 3 个书名长词元
	minTitleTokenLen  = 3 // 书名"长词元"：长度 > 3
	maxDescTokens     = 5 // 最多保留 5 个简介长词元
	minDescTokenLen   = 5 // 简介"长词元"：长度 > 5
)

// Representation 是一本图书的派生特征表示。
// 只属于产出它的模型实例，拟合后不再共享或修改。
type Representation struct {
	Text   string   // 向量模型用的加权特征文本（已小写）
	Tokens []string // 关键词模型用的词元集（已折叠、截断、去重，保序）
	Genre  string   // 折叠后的类别，精确匹配加分用
	Author string   // 折叠后的作者，精确匹配加分用
}

// Extract 抽取一本图书的特征表示。
// 纯函数：同一本书任何时刻抽取结果一致；空字段不产生任何占位词元。
func Extract(b *core.Book) Representation {
	return Representation{
		Text:   FeatureText(b),
		Tokens: KeywordTokens(b),
		Genre:  textutil.Fold(strings.TrimSpace(b.Genre)),
		Author: textutil.Fold(strings.TrimSpace(b.Author)),
	}
}

// FeatureText 拼出向量化用的加权文本：字段小写后按权重重复。
// 空字段直接跳过，不引入占位词。
func FeatureText(b *core.Book) string {
	parts := make([]string, 0, titleWeight+authorWeight+genreWeight+descriptionWeight)
	appendWeighted := func(text string, weight int) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		lowered := strings.ToLower(text)
		for i := 0; i < weight; i++ {
			parts = append(parts, lowered)
		}
	}
	appendWeighted(b.Title, titleWeight)
	appendWeighted(b.Author, authorWeight)
	appendWeighted(b.Genre, genreWeight)
	appendWeighted(b.Description, descriptionWeight)
	return strings.Join(parts, " ")
}

// KeywordTokens 抽取关键词模型的词元集：
// 类别词元 + 截断后的书名/简介长词元 + 作者词元（整名折叠为一个词元）。
func KeywordTokens(b *core.Book) []string {
	tokens := make([]string, 0, 16)
	tokens = append(tokens, textutil.Tokenize(b.Genre)...)
	tokens = append(tokens, longTokens(b.Title, minTitleTokenLen, maxTitleTokens)...)
	tokens = append(tokens, longTokens(b.Description, minDescTokenLen, maxDescTokens)...)
	if author := textutil.Fold(strings.TrimSpace(b.Author)); author != "" {
		tokens = append(tokens, author)
	}
	return dedup(tokens)
}

// longTokens 返回文本中最多 limit 个长度超过 minLen 的词元，保序。
func longTokens(text string, minLen, limit int) []string {
	out := make([]string, 0, limit)
	for _, tok := range textutil.Tokenize(text) {
		if len(tok) <= minLen {
			continue
		}
		out = append(out, tok)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func dedup(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
