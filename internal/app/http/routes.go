package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminapi "kidcanvas/internal/api/admin"
	artworksapi "kidcanvas/internal/api/artworks"
	authapi "kidcanvas/internal/api/auth"
	"kidcanvas/internal/api/billing"
	childrenapi "kidcanvas/internal/api/children"
	familiesapi "kidcanvas/internal/api/families"
	"kidcanvas/internal/api/guard"
	insightsapi "kidcanvas/internal/api/insights"
	"kidcanvas/internal/api/plans"
	socialapi "kidcanvas/internal/api/social"
	stripewebhooks "kidcanvas/internal/api/stripewebhook"
	"kidcanvas/internal/api/users"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/authn"
	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/families"
	domainusers "kidcanvas/internal/domain/users"
)

type Deps struct {
	Resolver *authn.Resolver
	Owners   guard.ArtworkOwners

	Auth     *authapi.Handler
	Users    *users.Handler
	Billing  *billing.Handler
	Plans    *plans.Handler
	Webhook  *stripewebhooks.Handler
	Admin    *adminapi.Handler
	Artworks *artworksapi.Handler
	Families *familiesapi.Handler
	Children *childrenapi.Handler
	Social   *socialapi.Handler
	Insights *insightsapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// raw body, Stripe verifies the signature
	r.POST("/webhook", d.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeJSONInput())

	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)
	public.POST("/logout", d.Auth.Logout)
	public.GET("/verify", d.Auth.VerifyEmail)
	public.POST("/resend-verification", d.Auth.ResendVerification)
	public.POST("/request-password-reset", d.Auth.RequestPasswordReset)
	public.POST("/reset-password", d.Auth.ResetPassword)
	public.GET("/plans", d.Plans.ListPlans)

	public.GET("/auth/google", d.Auth.GoogleStart)
	public.GET("/auth/google/callback", d.Auth.GoogleCallback)

	// Authenticated: bearer token (mobile) or session cookie (web)
	auth := r.Group("/")
	auth.Use(middleware.Authenticate(d.Resolver), middleware.SanitizeJSONInput())
	auth.GET("/me", d.Users.GetCurrentUser)
	auth.GET("/payments", d.Billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", d.Billing.CreateCheckoutSession)
	auth.POST("/billing-portal", d.Billing.CreateBillingPortal)
	auth.POST("/change-password", d.Auth.ChangePassword)

	api := auth.Group("/api")

	api.POST("/upload", d.Artworks.Upload)

	api.POST("/families", d.Families.Create)
	api.GET("/families", d.Families.ListMine)
	api.GET("/families/:id", d.Families.Get)
	api.PATCH("/families/:id/members/:userId", d.Families.UpdateMember)
	api.DELETE("/families/:id/members/:userId", d.Families.RemoveMember)
	api.POST("/families/:id/invites", d.Families.CreateInvite)
	api.GET("/families/:id/invites", d.Families.ListInvites)
	api.POST("/invites/:token/accept", d.Families.AcceptInvite)

	api.GET("/families/:id/children", d.Children.List)
	api.POST("/families/:id/children", d.Children.Create)
	api.PATCH("/children/:id", d.Children.Update)
	api.DELETE("/children/:id", d.Children.Delete)

	api.GET("/families/:id/artworks", d.Artworks.List)
	api.GET("/artworks/:id", d.Artworks.Get)
	api.PATCH("/artworks/:id", d.Artworks.Update)
	api.DELETE("/artworks/:id", d.Artworks.Delete)
	api.POST("/artworks/:id/favorite", d.Artworks.ToggleFavorite)
	api.POST("/artworks/:id/ai-tags",
		middleware.RequireCapability(guard.OwnerOfArtwork(d.Owners, "id", families.OpEdit), access.CapAITags),
		d.Artworks.GenerateAITags)

	api.POST("/artworks/:id/reactions", d.Social.AddReaction)
	api.DELETE("/artworks/:id/reactions/:emoji", d.Social.RemoveReaction)
	api.GET("/artworks/:id/comments", d.Social.ListComments)
	api.POST("/artworks/:id/comments", d.Social.AddComment)
	api.DELETE("/comments/:id", d.Social.DeleteComment)

	api.GET("/families/:id/timeline", d.Insights.Timeline)
	api.GET("/families/:id/analytics", d.Insights.Analytics)
	api.GET("/families/:id/feed", d.Insights.Feed)
	api.GET("/families/:id/artbook.pdf",
		middleware.RequireCapability(guard.OwnerOfFamily(d.Owners, "id", families.OpView), access.CapArtBook),
		d.Insights.ArtBook)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.Authenticate(d.Resolver), middleware.RequireRole(domainusers.RoleAdmin))
	admin.GET("/users", d.Admin.ListAllUsers)
	admin.GET("/users/:id", d.Admin.GetUserDetails)
	admin.GET("/payments", d.Admin.ListAllPayments)
	admin.GET("/stats", d.Admin.GetAdminStats)
	admin.POST("/sync-plans", d.Plans.SyncPlansFromStripe)
}
