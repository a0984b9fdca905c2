package delivery

import (
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hMedia *MediaHandler, hChat *ChatHandler) {

	// library
	r.Get("/api/media", hMedia.List)
	r.Post("/api/upload", hMedia.Upload)
	r.Post("/api/upload/temp", hMedia.UploadTemp)
	r.Delete("/api/temp/{name}", hMedia.DeleteTemp)
	r.Delete("/api/temp", hMedia.CleanTemp)
	r.Get("/api/{bucket:videos|photos|audio|temp|thumbnails}/{name}", hMedia.ServeFile)

	// chat
	r.Get("/api/chat", hChat.History)
	r.Post("/api/chat", hChat.Post)
	r.Get("/api/chat/response", hChat.LatestResponse)
}
