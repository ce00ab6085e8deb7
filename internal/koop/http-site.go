package koop

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tdewolff/minify/v2"
	xmlmin "github.com/tdewolff/minify/v2/xml"

	"github.com/tarimkoop/koop/internal/koop/dao"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc("text/xml", xmlmin.Minify)
}

type sitemapPage struct {
	path       string
	changeFreq string
	priority   float64
}

var staticPages = []sitemapPage{
	{"/", "weekly", 1},
	{"/hakkimizda", "monthly", 0.7},
	{"/projeler", "daily", 0.8},
	{"/haberler", "daily", 0.8},
	{"/duyurular", "daily", 0.8},
	{"/uyelerimiz", "monthly", 0.5},
	{"/yonetim", "monthly", 0.5},
	{"/iletisim", "yearly", 0.4},
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type HeartbeatResponse struct {
	Ok          bool   `json:"ok"`
	Timestamp   string `json:"timestamp,omitempty"`
	Message     string `json:"message,omitempty"`
	RecordCount int64  `json:"recordCount"`
	Error       string `json:"error,omitempty"`
}

func (s *Services) AddSiteServices(e *echo.Echo, public *echo.Group) {
	e.GET("/sitemap.xml", s.getSitemap)
	e.GET("/robots.txt", s.getRobots)

	public.GET("home/", s.getHome)
	public.GET("heartbeat/", s.getHeartbeat)

	// Websocket content changes endpoint
	public.GET("realtime/ws/", func(c echo.Context) error {
		s.realtime.Handle(c.Response(), c.Request())
		return nil
	})
}

// getHome godoc
// @id getHome
// @Summary Сайт: данные главной страницы
// @Description Последние новости и объявления, количество проектов и членов
// @Tags Site
// @Produce json
// @Success 200 {object} business.HomeData "Данные главной страницы"
// @Router /api/home/ [get]
func (s *Services) getHome(c echo.Context) error {
	data, err := s.bl.Home(c.Request().Context())
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

// getHeartbeat godoc
// @id getHeartbeat
// @Summary Сайт: проверка соединения с базой
// @Tags Site
// @Produce json
// @Success 200 {object} HeartbeatResponse "Соединение активно"
// @Failure 500 {object} HeartbeatResponse "Ошибка базы"
// @Router /api/heartbeat/ [get]
func (s *Services) getHeartbeat(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	count, err := s.bl.Heartbeat(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, HeartbeatResponse{Ok: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, HeartbeatResponse{
		Ok:          true,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Message:     "Database connection active",
		RecordCount: count,
	})
}

func (s *Services) siteURL(path string) string {
	return strings.TrimSuffix(s.cfg.WebURL.String(), "/") + path
}

// getSitemap godoc
// @id getSitemap
// @Summary Сайт: карта сайта
// @Tags Site
// @Produce xml
// @Success 200 {string} string "sitemap.xml"
// @Router /sitemap.xml [get]
func (s *Services) getSitemap(c echo.Context) error {
	now := time.Now().UTC().Format("2006-01-02")
	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL(p.path),
			LastMod:    now,
			ChangeFreq: p.changeFreq,
			Priority:   p.priority,
		})
	}

	news, err := dao.NewsSlugs(s.db)
	if err != nil {
		return EError(c, err)
	}
	for _, n := range news {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL("/haberler/" + n.Slug),
			LastMod:    n.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	announcements, err := dao.AnnouncementSlugs(s.db)
	if err != nil {
		return EError(c, err)
	}
	for _, a := range announcements {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.siteURL("/duyurular/" + a.Slug),
			LastMod:    a.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return EError(c, err)
	}
	body = append([]byte(xml.Header), body...)

	minified, err := minifier.Bytes("text/xml", body)
	if err != nil {
		return EError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, minified)
}

// getRobots godoc
// @id getRobots
// @Summary Сайт: robots.txt
// @Tags Site
// @Produce plain
// @Success 200 {string} string "robots.txt"
// @Router /robots.txt [get]
func (s *Services) getRobots(c echo.Context) error {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	sb.WriteString("Allow: /\n")
	sb.WriteString("Disallow: /admin\n")
	sb.WriteString("Disallow: /admin/*\n")
	sb.WriteString("Disallow: /login\n\n")
	fmt.Fprintf(&sb, "Sitemap: %s\n", s.siteURL("/sitemap.xml"))
	fmt.Fprintf(&sb, "Host: %s\n", s.cfg.WebURL.Host)
	return c.String(http.StatusOK, sb.String())
}
