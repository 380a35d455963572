package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/gov-comb/app/source"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>기획재정부</title>
    <item>
      <title>2025년 세법 개정안 발표</title>
      <link>https://moef.go.kr/nw/1</link>
      <pubDate>Mon, 09 Jun 2025 10:00:00 +0900</pubDate>
    </item>
  </channel>
</rss>`

const boardListPage = `<html><body>
<table class="board_list">
  <thead><tr><th>번호</th><th>제목</th><th>등록일</th></tr></thead>
  <tbody>
    <tr><td>2</td><td><a href="/board/view.do?id=2">공정거래 정책 설명회 개최</a></td><td>2025.06.09</td></tr>
    <tr><td>1</td><td><a href="view.do?id=1"> 하도급 실태 조사 결과 </a></td><td>2025.06.08</td></tr>
    <tr><td>0</td><td><a name="top">링크 없는 제목</a></td><td>2025.06.07</td></tr>
    <tr><td>0</td><td><a href=" ">빈 링크 제목</a></td><td>2025.06.07</td></tr>
    <tr><td colspan="3">게시물이 없습니다</td></tr>
  </tbody>
</table>
</body></html>`

const mePage = `<html><body>
<table>
  <tbody>
    <tr>
      <td>10</td>
      <td><a href="#" class="icon">첨부</a> <a href="/home/web/board/read.do?boardId=10">대기환경 개선 종합계획 발표</a></td>
      <td>2025-06-09</td>
      <td>1234</td>
    </tr>
  </tbody>
</table>
</body></html>`

const kccpListPage = `<html><body>
<ul class="news">
  <li><a href="/news/nv_newsView.do?seq=5">기후변화 대응 협약 체결</a> <span>2025.06.09</span></li>
  <li><a href="/news/nv_newsView.do?seq=4">탄소중립 포럼 개최</a></li>
  <li><a href="/news/nv_newsView.do?seq=3"></a></li>
</ul>
</body></html>`

func newTestClient() *Client {
	return NewClient("gov-comb-test", 5*time.Second)
}

func serve(t *testing.T, contentType, body string, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetcher(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer srv.Close()

	candidates, err := NewRSSFetcher(newTestClient()).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "2025년 세법 개정안 발표", candidates[0].Title)
	require.Equal(t, "https://moef.go.kr/nw/1", candidates[0].Link)
	require.NotEmpty(t, candidates[0].RawDate)

	require.Equal(t, "gov-comb-test", gotUA)
	require.Contains(t, gotLang, "ko-KR")
}

func TestRSSFetcherErrors(t *testing.T) {
	fetcher := NewRSSFetcher(newTestClient())

	notFound := serve(t, "text/plain", "missing", http.StatusNotFound)
	_, err := fetcher.Fetch(context.Background(), notFound.URL)
	require.Error(t, err)

	malformed := serve(t, "application/xml", "<rss><channel><item><title>broken", http.StatusOK)
	_, err = fetcher.Fetch(context.Background(), malformed.URL)
	require.Error(t, err)

	ok := serve(t, "application/xml", testRSS, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetcher.Fetch(ctx, ok.URL)
	require.Error(t, err)
}

func TestGenericHTMLFetcher(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", boardListPage, http.StatusOK)

	candidates, err := NewHTMLFetcher(newTestClient(), GenericVariant).Fetch(context.Background(), srv.URL+"/board/list.do")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	require.Equal(t, "공정거래 정책 설명회 개최", candidates[0].Title)
	require.Equal(t, srv.URL+"/board/view.do?id=2", candidates[0].Link)
	require.Equal(t, "2025.06.09", candidates[0].RawDate)

	require.Equal(t, "하도급 실태 조사 결과", candidates[1].Title)
	require.Equal(t, srv.URL+"/board/view.do?id=1", candidates[1].Link)
	require.Empty(t, candidates[1].Description)
}

func TestHTMLFetcherSendsTargetAsReferer(t *testing.T) {
	var gotReferer, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(boardListPage))
	}))
	defer srv.Close()

	target := srv.URL + "/home/web/board/list.do?menuId=290"
	_, err := NewHTMLFetcher(newTestClient(), GenericVariant).Fetch(context.Background(), target)
	require.NoError(t, err)
	require.Equal(t, target, gotReferer)
	require.Contains(t, gotLang, "ko-KR")
}

func TestGenericHTMLFetcherHTTPError(t *testing.T) {
	srv := serve(t, "text/html", "oops", http.StatusInternalServerError)

	_, err := NewHTMLFetcher(newTestClient(), GenericVariant).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestMEVariantPicksBoardAnchorAndDateCell(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", mePage, http.StatusOK)

	candidates, err := NewHTMLFetcher(newTestClient(), MEVariant).Fetch(context.Background(), srv.URL+"/home/web/board/list.do")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "대기환경 개선 종합계획 발표", candidates[0].Title)
	require.Equal(t, srv.URL+"/home/web/board/read.do?boardId=10", candidates[0].Link)
	require.Equal(t, "2025-06-09", candidates[0].RawDate)
}

func TestVariantRejectsSoftNotFound(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", `<html><body><h1>요청하신 페이지를 찾을 수 없습니다</h1></body></html>`, http.StatusOK)

	variant := MEVariant
	variant.AlternateHost = false

	_, err := NewHTMLFetcher(newTestClient(), variant).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, errSoftNotFound)
}

func TestKCCPVariantListFallback(t *testing.T) {
	srv := serve(t, "text/html; charset=utf-8", kccpListPage, http.StatusOK)

	candidates, err := NewHTMLFetcher(newTestClient(), KCCPVariant).Fetch(context.Background(), srv.URL+"/news/list.do")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "기후변화 대응 협약 체결", candidates[0].Title)
	require.Equal(t, srv.URL+"/news/nv_newsView.do?seq=5", candidates[0].Link)
	require.Equal(t, "2025.06.09", candidates[0].RawDate)
	require.Empty(t, candidates[1].RawDate)
}

func TestAlternateHost(t *testing.T) {
	require.Equal(t, "https://www.me.go.kr/a?b=1", alternateHost("https://me.go.kr/a?b=1"))
	require.Equal(t, "https://me.go.kr/a", alternateHost("https://www.me.go.kr/a"))
	require.Empty(t, alternateHost("/relative"))
}

func TestClientPageRequiresHTML(t *testing.T) {
	srv := serve(t, "application/pdf", "%PDF", http.StatusOK)

	_, _, err := newTestClient().Page(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestClientTimeoutFollowsContextDeadline(t *testing.T) {
	client := NewClient("", 30*time.Second)
	require.Equal(t, DefaultUserAgent, client.UserAgent())

	timeout, err := client.Timeout(context.Background())
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	timeout, err = client.Timeout(ctx)
	require.NoError(t, err)
	require.Positive(t, timeout)
	require.LessOrEqual(t, timeout, time.Second)
}

func TestClientTimeoutAfterDeadline(t *testing.T) {
	client := NewClient("", 30*time.Second)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := client.Timeout(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	srv := serve(t, "text/html; charset=utf-8", boardListPage, http.StatusOK)
	_, err = NewHTMLFetcher(client, GenericVariant).Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetFor(t *testing.T) {
	set := NewSet(newTestClient())

	for _, kind := range []source.Kind{source.KindRSS, source.KindHTML, source.KindHTMLME, source.KindHTMLKCCP} {
		f, err := set.For(kind)
		require.NoError(t, err)
		require.NotNil(t, f)
	}

	_, err := set.For(source.Kind("json"))
	require.Error(t, err)
}
