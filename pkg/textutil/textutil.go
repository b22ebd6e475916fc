// Package textutil 提供推荐特征抽取用到的文本基础能力：
// 大小写折叠、重音符号剥离、分词、n-gram 展开与停用词过滤。
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenPattern 匹配长度 >= 2 的字母/数字词元（下划线视为词内字符）。
var tokenPattern = regexp.MustCompile(`[a-z0-9_]{2,}`)

// accentStripper 先 NFD 分解，去掉所有组合用符号（Mn 类），再 NFC 合成。
// 对 "café" 产出 "cafe"，对中日韩等非组合文字是恒等变换。
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold 统一大小写并剥离重音符号。所有进入模型的文本都先经过这里，
// 保证 "Café" 与 "cafe" 产生同一词元。
func Fold(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		// 变换失败时退回原文，仅做小写折叠
		out = s
	}
	return strings.ToLower(out)
}

// Tokenize 折叠后按词元模式切分。单字符词元被丢弃。
func Tokenize(s string) []string {
	return tokenPattern.FindAllString(Fold(s), -1)
}

// TokenizeFiltered 在 Tokenize 基础上再去掉英文停用词。
func TokenizeFiltered(s string) []string {
	raw := Tokenize(s)
	out := raw[:0]
	for _, tok := range raw {
		if IsStopWord(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Ngrams 把词元序列展开为 [minN, maxN] 范围内的所有 n-gram，
// 多词 n-gram 以空格连接。minN=1, maxN=1 时等价于原序列。
func Ngrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}
	out := make([]string, 0, len(tokens)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
