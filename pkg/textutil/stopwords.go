package textutil

// englishStopWords 是英文停用词表，覆盖常见虚词。
// 向量模型在构建词表前剔除这些词，避免 "the"、"and" 之类高频词主导相似度。
var englishStopWords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "almost",
		"along", "already", "also", "although", "always", "am", "among", "an",
		"and", "another", "any", "anyone", "anything", "are", "around", "as",
		"at", "back", "be", "became", "because", "become", "becomes", "been",
		"before", "behind", "being", "below", "between", "both", "but", "by",
		"can", "cannot", "could", "did", "do", "does", "doing", "down",
		"during", "each", "either", "else", "enough", "even", "ever", "every",
		"few", "for", "former", "from", "further", "had", "has", "have",
		"having", "he", "hence", "her", "here", "hers", "herself", "him",
		"himself", "his", "how", "however", "if", "in", "indeed", "into",
		"is", "it", "its", "itself", "just", "last", "latter", "least",
		"less", "many", "may", "me", "meanwhile", "might", "more", "moreover",
		"most", "mostly", "much", "must", "my", "myself", "namely", "neither",
		"never", "nevertheless", "next", "no", "nobody", "none", "nor", "not",
		"nothing", "now", "nowhere", "of", "off", "often", "on", "once",
		"one", "only", "onto", "or", "other", "others", "otherwise", "our",
		"ours", "ourselves", "out", "over", "own", "per", "perhaps", "please",
		"rather", "same", "she", "should", "since", "so", "some", "somehow",
		"someone", "something", "sometimes", "somewhere", "still", "such",
		"than", "that", "the", "their", "theirs", "them", "themselves",
		"then", "thence", "there", "thereafter", "thereby", "therefore",
		"therein", "these", "they", "this", "those", "though", "through",
		"throughout", "thus", "to", "together", "too", "toward", "towards",
		"under", "until", "up", "upon", "us", "very", "via", "was", "we",
		"well", "were", "what", "whatever", "when", "whence", "whenever",
		"where", "whereas", "whereby", "wherein", "whether", "which", "while",
		"who", "whoever", "whole", "whom", "whose", "why", "will", "with",
		"within", "without", "would", "yet", "you", "your", "yours",
		"yourself", "yourselves",
	}
	for _, w := range words {
		englishStopWords[w] = struct{}{}
	}
}

// IsStopWord 判断词元是否为英文停用词。
func IsStopWord(tok string) bool {
	_, ok := englishStopWords[tok]
	return ok
}
