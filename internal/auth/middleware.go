package auth

import (
	"context"
	"net/http"
)

type contextKey string

const visitorKey contextKey = "visitor"

// LoadVisitor resolves the Visitor for every request and stores it in the
// request context. The wrapped ResponseWriter writes the visitor's cookie
// directives just before the response headers go out.
func LoadVisitor(res *Resolver, opts CookieOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := res.signer.sessionFromRequest(r)
			v := res.Resolve(r, sess)

			fw := &finalizingWriter{ResponseWriter: w, visitor: v, signer: res.signer, opts: opts}
			next.ServeHTTP(fw, r.WithContext(WithVisitor(r.Context(), v)))

			// Handlers that never write still get their cookies.
			fw.finalize()
		})
	}
}

// WithVisitor returns a copy of ctx carrying v.
func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorKey, v)
}

// VisitorFromContext returns the request's Visitor. Outside LoadVisitor it
// returns an anonymous visitor with an empty session, never nil.
func VisitorFromContext(ctx context.Context) *Visitor {
	if v, ok := ctx.Value(visitorKey).(*Visitor); ok && v != nil {
		return v
	}
	return &Visitor{Session: &Session{}}
}

// finalizingWriter adds the visitor's cookies on the first WriteHeader or
// Write. Headers cannot change after that point.
type finalizingWriter struct {
	http.ResponseWriter
	visitor   *Visitor
	signer    *Signer
	opts      CookieOptions
	finalized bool
}

func (w *finalizingWriter) finalize() {
	if w.finalized {
		return
	}
	w.finalized = true
	for _, c := range w.visitor.Directives(w.signer, w.opts) {
		http.SetCookie(w.ResponseWriter, c)
	}
}

func (w *finalizingWriter) WriteHeader(code int) {
	w.finalize()
	w.ResponseWriter.WriteHeader(code)
}

func (w *finalizingWriter) Write(b []byte) (int, error) {
	w.finalize()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *finalizingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
