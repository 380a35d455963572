package feed

import (
	"testing"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>환경부 보도자료</title>
    <link>https://me.go.kr</link>
    <description>보도자료</description>
    <item>
      <title>탄소중립 정책 발표</title>
      <link>https://me.go.kr/home/web/board/read.do?boardId=1</link>
      <description><![CDATA[<p>탄소중립 <b>정책</b>을 발표했다.</p>]]></description>
      <guid>1</guid>
      <pubDate>Mon, 09 Jun 2025 10:00:00 +0900</pubDate>
    </item>
    <item>
      <title>대기환경 점검 결과</title>
      <link>https://me.go.kr/home/web/board/read.do?boardId=2</link>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	candidates, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got: %d", len(candidates))
	}

	first := candidates[0]
	if first.Title != "탄소중립 정책 발표" {
		t.Errorf("Expected title '탄소중립 정책 발표', got: %s", first.Title)
	}
	if first.Link != "https://me.go.kr/home/web/board/read.do?boardId=1" {
		t.Errorf("Expected item link, got: %s", first.Link)
	}
	if first.RawDate != "Mon, 09 Jun 2025 10:00:00 +0900" {
		t.Errorf("Expected pubDate as raw date, got: %s", first.RawDate)
	}
	if first.Description == "" {
		t.Error("Expected description to be extracted")
	}

	second := candidates[1]
	if second.RawDate != "" {
		t.Errorf("Expected empty raw date, got: %s", second.RawDate)
	}
	if second.Description != "" {
		t.Errorf("Expected empty description, got: %s", second.Description)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>기획재정부</title>
  <link href="https://moef.go.kr"/>
  <updated>2025-06-09T10:00:00Z</updated>
  <entry>
    <title>세법 개정안 발표</title>
    <link href="https://moef.go.kr/nw/nes/detailNesDtaView.do?searchBbsId=1"/>
    <id>urn:uuid:1</id>
    <updated>2025-06-09T09:00:00+09:00</updated>
    <summary>2025년 세법 개정안을 발표합니다.</summary>
  </entry>
</feed>`

	parser := NewParser()
	candidates, err := parser.Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got: %d", len(candidates))
	}

	c := candidates[0]
	if c.Title != "세법 개정안 발표" {
		t.Errorf("Expected title '세법 개정안 발표', got: %s", c.Title)
	}
	if c.Link != "https://moef.go.kr/nw/nes/detailNesDtaView.do?searchBbsId=1" {
		t.Errorf("Expected link from href attribute, got: %s", c.Link)
	}
	if c.RawDate == "" {
		t.Error("Expected updated date to be used as raw date")
	}
	if c.Description != "2025년 세법 개정안을 발표합니다." {
		t.Errorf("Expected summary as description, got: %s", c.Description)
	}
}

func TestParseRDFWithDublinCoreDate(t *testing.T) {
	rdfData := `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/"
         xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel rdf:about="https://mss.go.kr">
    <title>중소벤처기업부</title>
    <link>https://mss.go.kr</link>
    <description>공지</description>
  </channel>
  <item rdf:about="https://mss.go.kr/site/smba/ex/bbs/View.do?cbIdx=86&amp;bcIdx=1">
    <title>소상공인 지원사업 공고</title>
    <link>https://mss.go.kr/site/smba/ex/bbs/View.do?cbIdx=86&amp;bcIdx=1</link>
    <dc:date>2025-06-09</dc:date>
  </item>
</rdf:RDF>`

	parser := NewParser()
	candidates, err := parser.Run([]byte(rdfData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got: %d", len(candidates))
	}
	if candidates[0].RawDate == "" {
		t.Error("Expected dc:date to be used as raw date")
	}
	if candidates[0].Link != "https://mss.go.kr/site/smba/ex/bbs/View.do?cbIdx=86&bcIdx=1" {
		t.Errorf("Expected unescaped link, got: %s", candidates[0].Link)
	}
}

func TestParseContentEncodedFallback(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test</title>
    <item>
      <title>식품 안전 점검</title>
      <link>https://mfds.go.kr/brd/m_99/view.do?seq=1</link>
      <content:encoded><![CDATA[<p>여름철 식품 안전 점검 결과</p>]]></content:encoded>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	candidates, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got: %d", len(candidates))
	}
	if candidates[0].Description != "<p>여름철 식품 안전 점검 결과</p>" {
		t.Errorf("Expected content:encoded as description, got: %s", candidates[0].Description)
	}
}

func TestParseGUIDLinkFallback(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test</title>
    <item>
      <title>국방 정책 설명회 개최</title>
      <guid isPermaLink="true">https://mnd.go.kr/user/newsInUserRecord.action?id=7</guid>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	candidates, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got: %d", len(candidates))
	}
	if candidates[0].Link != "https://mnd.go.kr/user/newsInUserRecord.action?id=7" {
		t.Errorf("Expected guid as link, got: %s", candidates[0].Link)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()
	if _, err := parser.Run([]byte("<rss><channel><item><title>broken")); err == nil {
		t.Error("Expected error for malformed feed")
	}
	if _, err := parser.Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for non-feed data")
	}
}
