package nutrition

// Timestamps are kept as the backend's ISO-8601 strings; they carry no
// zone offset and do not decode into time.Time.

// TokenResponse is returned by auth/login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// UserBrief is returned by auth/register
type UserBrief struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FullName  string `json:"full_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

// HealthProfileUpdate is the body of PUT profile
type HealthProfileUpdate struct {
	GoalType          string `json:"goal_type"`
	CalorieTarget     *int   `json:"calorie_target"`
	Allergies         string `json:"allergies,omitempty"`
	ChronicConditions string `json:"chronic_conditions,omitempty"`
	FoodRestrictions  string `json:"food_restrictions,omitempty"`
}

type HealthProfile struct {
	ID                int64  `json:"id"`
	UserID            int64  `json:"user_id"`
	GoalType          string `json:"goal_type"`
	CalorieTarget     *int   `json:"calorie_target"`
	Allergies         string `json:"allergies"`
	ChronicConditions string `json:"chronic_conditions"`
	FoodRestrictions  string `json:"food_restrictions"`
}

type UserProfile struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	FullName  string         `json:"full_name"`
	Age       *int           `json:"age"`
	CreatedAt string         `json:"created_at"`
	Profile   *HealthProfile `json:"profile"`
}

// IsAdmin reports whether the user may call the admin endpoints
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

type MealAnalyzeResponse struct {
	MealID         int64                  `json:"meal_id"`
	Emotion        map[string]interface{} `json:"emotion"`
	Nutrition      map[string]interface{} `json:"nutrition"`
	Recommendation map[string]interface{} `json:"recommendation"`
	RiskScore      float64                `json:"risk_score"`
}

type MealHistoryItem struct {
	MealID       int64                  `json:"meal_id"`
	CreatedAt    string                 `json:"created_at"`
	MoodText     string                 `json:"mood_text"`
	EmotionLabel string                 `json:"emotion_label"`
	RiskScore    float64                `json:"risk_score"`
	Nutrition    map[string]interface{} `json:"nutrition"`
}

type MealHistoryResponse struct {
	Items []MealHistoryItem `json:"items"`
}

// Provider types accepted by the backend
const (
	ProviderOpenAICompatible = "openai_compatible"
	ProviderNewAPI           = "new_api"
	ProviderGemini           = "gemini"
	ProviderClaude           = "claude"
)

type ProviderCreate struct {
	ProviderType string            `json:"provider_type"`
	Name         string            `json:"name"`
	BaseURL      string            `json:"base_url"`
	APIKey       string            `json:"api_key"`
	ModelMap     map[string]string `json:"model_map"`
	Priority     int               `json:"priority"`
	Enabled      bool              `json:"enabled"`
}

// NewProviderCreate fills the backend defaults
func NewProviderCreate(providerType, name, baseURL, apiKey string) ProviderCreate {
	return ProviderCreate{
		ProviderType: providerType,
		Name:         name,
		BaseURL:      baseURL,
		APIKey:       apiKey,
		ModelMap:     map[string]string{},
		Priority:     100,
		Enabled:      true,
	}
}

// ProviderUpdate is a partial update; nil fields are left alone
type ProviderUpdate struct {
	BaseURL  *string           `json:"base_url,omitempty"`
	APIKey   *string           `json:"api_key,omitempty"`
	ModelMap map[string]string `json:"model_map,omitempty"`
	Priority *int              `json:"priority,omitempty"`
	Enabled  *bool             `json:"enabled,omitempty"`
}

type Provider struct {
	ID           int64             `json:"id"`
	ProviderType string            `json:"provider_type"`
	Name         string            `json:"name"`
	BaseURL      string            `json:"base_url"`
	ModelMap     map[string]string `json:"model_map"`
	Priority     int               `json:"priority"`
	Enabled      bool              `json:"enabled"`
	CreatedAt    string            `json:"created_at"`
}

type ProviderTemplate struct {
	ProviderType string            `json:"provider_type"`
	Name         string            `json:"name"`
	BaseURL      string            `json:"base_url"`
	ModelMap     map[string]string `json:"model_map"`
	Description  string            `json:"description,omitempty"`
}

type ProviderHealthCheck struct {
	ProviderID int64  `json:"provider_id"`
	OK         bool   `json:"ok"`
	Detail     string `json:"detail"`
}

type AuditLog struct {
	ID        int64                  `json:"id"`
	UserID    *int64                 `json:"user_id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt string                 `json:"created_at"`
}

type DailyReport struct {
	Date          string  `json:"date"`
	TotalMeals    int     `json:"total_meals"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	TotalCalories float64 `json:"total_calories"`
}

type WeeklyReportItem struct {
	Date          string  `json:"date"`
	Meals         int     `json:"meals"`
	AvgRiskScore  float64 `json:"avg_risk_score"`
	TotalCalories float64 `json:"total_calories"`
}

type WeeklyReport struct {
	Items []WeeklyReportItem `json:"items"`
}
