package subscriptionrequests

// CreateSubscriptionRequest starts a checkout for a paid plan.
type CreateSubscriptionRequest struct {
	Plan string `json:"plan" binding:"required"`
}
