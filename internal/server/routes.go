package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw, s.maxBytesMw)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/user/register", s.userRegister()).Methods(http.MethodPost)
	api.HandleFunc("/user/login", s.userLogin()).Methods(http.MethodPost)

	userAPI := api.PathPrefix("/user").Subrouter()
	userAPI.Use(s.authMw)
	userAPI.HandleFunc("/logout", s.userLogout()).Methods(http.MethodPost)
	userAPI.HandleFunc("/info", s.userInfo()).Methods(http.MethodPost)
	userAPI.PathPrefix("").Handler(s.notFoundHandler())

	wishlistAPI := api.PathPrefix("/wishlist").Subrouter()
	wishlistAPI.Use(s.authMw)
	wishlistAPI.HandleFunc("", s.wishlistGet()).Methods(http.MethodGet)
	wishlistAPI.HandleFunc("/add", s.wishlistAdd()).Methods(http.MethodPost)
	wishlistAPI.HandleFunc("/remove", s.wishlistRemove()).Methods(http.MethodPost)
	wishlistAPI.PathPrefix("").Handler(s.notFoundHandler())

	trackAPI := api.PathPrefix("/track").Subrouter()
	trackAPI.Use(s.authMw)
	trackAPI.HandleFunc("", s.trackGet()).Methods(http.MethodGet)
	trackAPI.HandleFunc("/add", s.trackAdd()).Methods(http.MethodPost)
	trackAPI.HandleFunc("/remove", s.trackRemove()).Methods(http.MethodPost)
	trackAPI.PathPrefix("").Handler(s.notFoundHandler())

	priceAPI := api.PathPrefix("/price").Subrouter()
	priceAPI.Use(s.authMw)
	priceAPI.HandleFunc("/check", s.priceCheck()).Methods(http.MethodPost)
	priceAPI.PathPrefix("").Handler(s.notFoundHandler())

	dealsAPI := api.PathPrefix("/deals").Subrouter()
	dealsAPI.Use(s.authMw)
	dealsAPI.HandleFunc("/steam", s.dealsSteam()).Methods(http.MethodGet)
	dealsAPI.HandleFunc("/epic", s.dealsEpic()).Methods(http.MethodGet)
	dealsAPI.HandleFunc("/upcoming", s.dealsUpcoming()).Methods(http.MethodGet)
	dealsAPI.PathPrefix("").Handler(s.notFoundHandler())

	return r
}
