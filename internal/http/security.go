package http

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// securityMetrics counts requests rejected or flagged by the middleware.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

func (m *securityMetrics) RateLimitHits() int64 {
	return atomic.LoadInt64(&m.rateLimitHits)
}

func (m *securityMetrics) SuspiciousRequests() int64 {
	return atomic.LoadInt64(&m.suspiciousRequests)
}

// trustedProxies may set X-Forwarded-For and X-Real-IP.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("::1/128"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	suspiciousAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan",
	}
)

// detectSuspiciousRequest flags probing traffic. Flagged requests are still
// served; they are only logged and counted.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	suspicious := len(r.URL.String()) > 2048 ||
		r.Method == http.MethodTrace || r.Method == http.MethodConnect ||
		strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5

	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	for _, pattern := range suspiciousPatterns {
		if suspicious {
			break
		}
		suspicious = strings.Contains(path, pattern) || strings.Contains(query, pattern)
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range suspiciousAgents {
		if suspicious {
			break
		}
		suspicious = strings.Contains(userAgent, agent)
	}

	if suspicious && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return suspicious
}
