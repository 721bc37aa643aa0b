package rest

import (
	"net/http"
	"net/netip"
)

// clientIP extracts the caller address from r.RemoteAddr. When proxy headers
// are trusted, middleware.RealIP has already replaced RemoteAddr with a bare IP.
func clientIP(r *http.Request) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(r.RemoteAddr); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

// admit applies limiter to the caller. It writes the rejection itself and
// returns false when the request must stop.
func (s *Server) admit(w http.ResponseWriter, r *http.Request, limiter Limiter) bool {
	ip, ok := clientIP(r)
	if !ok {
		s.logger.Warn(r.Context(), "cannot determine client address", "remote_addr", r.RemoteAddr)
		writeError(w, r, http.StatusBadRequest, "cannot determine client address")
		return false
	}
	if !limiter.Allow(ip) {
		s.logger.Info(r.Context(), "request rate limited", "path", r.URL.Path, "ip", ip.String())
		writeError(w, r, http.StatusTooManyRequests, "too many requests")
		return false
	}
	return true
}
