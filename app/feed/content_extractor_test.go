package feed

import (
	"strings"
	"testing"
)

const articlePage = `<!DOCTYPE html>
<html lang="ko">
<head>
	<title>보도자료 상세</title>
</head>
<body>
	<header>
		<nav>홈 | 알림마당 | 보도자료</nav>
	</header>
	<main>
		<article>
			<h1>탄소중립 기본계획 발표</h1>
			<p>환경부는 오늘 2030 국가 온실가스 감축목표 달성을 위한 탄소중립 기본계획을 발표했다. 이번 계획은 산업, 수송, 건물 등 부문별 감축 경로를 담고 있다.</p>
			<p>정부는 이번 기본계획에 따라 관계 부처 합동으로 이행 점검 체계를 마련하고, 매년 추진 실적을 공개할 예정이다. 지방자치단체와의 협력도 강화한다.</p>
			<p>자세한 내용은 첨부된 보도자료를 참고하기 바란다. 문의 사항은 기후탄소정책실로 연락하면 된다.</p>
		</article>
	</main>
	<footer>
		<p>Copyright Ministry of Environment</p>
	</footer>
</body>
</html>`

func TestContentExtractorExtractsArticleText(t *testing.T) {
	extractor := NewContentExtractor()

	result, err := extractor.Run([]byte(articlePage), "https://me.go.kr/home/web/board/read.do?boardId=1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(result, "탄소중립 기본계획을 발표했다") {
		t.Errorf("Expected extracted content to contain article text, got: %s", result)
	}
	if strings.Contains(result, "<p>") {
		t.Error("Expected plain text without markup")
	}
	if strings.Contains(result, "Copyright Ministry") {
		t.Error("Expected footer to be excluded")
	}
}

func TestContentExtractorWithoutPageURL(t *testing.T) {
	result, err := NewContentExtractor().Run([]byte(articlePage), "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result == "" {
		t.Error("Expected non-empty result")
	}
}

func TestContentExtractorEmptyInput(t *testing.T) {
	if _, err := NewContentExtractor().Run(nil, ""); err == nil {
		t.Error("Expected error for empty data")
	}
}

func TestContentExtractorInvalidPageURL(t *testing.T) {
	if _, err := NewContentExtractor().Run([]byte(articlePage), "http://[::1"); err == nil {
		t.Error("Expected error for invalid page url")
	}
}
