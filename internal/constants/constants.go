package constants

// Centralized constants for headers, env keys and OpenAI integration.
const (
	// Environment variable keys
	EnvSessionSecret       = "SESSION_SECRET"
	EnvGoogleClientID      = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvOpenAIAPIKey        = "OPENAI_API_KEY"
	EnvSessionSecureCookie = "SESSION_SECURE_COOKIE"
	EnvConfigPath          = "BATTLEGRID_CONFIG"
	EnvDBPath              = "BATTLEGRID_DB"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// OpenAI API endpoints and base URL
	OpenAIBaseURL             = "https://api.openai.com"
	OpenAIChatCompletionsPath = "/v1/chat/completions"

	// OpenAI model name used for combat narration
	OpenAIChatModel = "gpt-5-nano"

	// Session / Cookie names
	CookieSessionName = "bg_session"

	// Google OAuth constants
	GoogleOAuthRedirect = "postmessage"
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	// Scopes for Google userinfo
	GoogleUserInfoScopes = []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"}
)

// Routes used by the backend router
const (
	RouteAPIPrefix          = "/api"
	RouteVersion            = "/version"
	RouteCharacters         = "/campaigns/:campaignID/characters"
	RouteEncounters         = "/campaigns/:campaignID/encounters"
	RouteEncounterByID      = "/encounters/:encounterID"
	RouteEncounterParty     = "/encounters/:encounterID/party"
	RouteEncounterMonsters  = "/encounters/:encounterID/monsters"
	RouteEncounterStart     = "/encounters/:encounterID/start"
	RouteEncounterAction    = "/encounters/:encounterID/action"
	RouteEncounterEndTurn   = "/encounters/:encounterID/end-turn"
	RouteEncounterEnd       = "/encounters/:encounterID/end"
	RouteEncounterSummary   = "/encounters/:encounterID/summary"
	RouteEncounterWatch     = "/encounters/:encounterID/watch"
	RouteCombatantByID      = "/encounters/:encounterID/combatants/:combatantID"
	RouteAuthGoogleCallBack = "/auth/google/oauth2callback"
	RouteAuthLogout         = "/auth/logout"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrMissingGoogleEnv   = "Missing GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET in environment"
	ErrInvalidEncounterID = "Invalid encounter ID"
	ErrInvalidCampaignID  = "Invalid campaign ID"
	ErrEncounterNotFound  = "Encounter not found"
	ErrCharacterNotFound  = "Character not found"
	ErrMonsterNotFound    = "Monster not found in bestiary"

	ErrFailedCreateEncounter = "Failed to create encounter"
	ErrFailedFetchEncounter  = "Failed to fetch encounter"
	ErrFailedFetchCharacters = "Failed to fetch characters"
	ErrFailedUpdateEncounter = "Failed to update encounter"

	ErrEncounterNotActive    = "Encounter is not active"
	ErrEncounterNotPreparing = "Encounter is not accepting combatants"
	ErrEncounterAlreadyEnded = "Encounter already ended"
	ErrCombatantNotFound     = "Combatant not found in this encounter"
	ErrNotCombatantsTurn     = "It is not that combatant's turn"
	ErrNoTargetSpecified     = "No valid target specified"
	ErrNoSpellSlotsRemaining = "No spell slots remaining at the required level"
	ErrUnknownActionType     = "Unknown action type"
	ErrFailedStoreAction     = "Failed to store action"

	ErrFailedExchangeToken    = "Failed to exchange token"
	ErrFailedGetUserInfo      = "Failed to get user info"
	ErrFailedReadUserData     = "Failed to read user data: %s"
	ErrNoEmailInGoogleProfile = "No email in Google profile"
	ErrFailedCreateSession    = "Failed to create session"

	ErrAuthRequired   = "Authentication required"
	ErrInvalidSession = "Invalid session"
)

// Logging field names
const (
	LogFieldEncounterID = "encounter_id"
	LogFieldCampaignID  = "campaign_id"
	LogFieldCharacterID = "character_id"
	LogFieldCombatantID = "combatant_id"
	LogFieldActor       = "actor"
	LogFieldAction      = "action"
	LogFieldRound       = "round"
	LogFieldKey         = "key"
	LogFieldName        = "name"
	LogFieldAddr        = "addr"
)
