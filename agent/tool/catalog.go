package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Hotel-Concierge/agent/contract"
	hotelapix "github.com/tanpawarit/Chative-Hotel-Concierge/agent/hotelapi"
)

const (
	ToolGetRestaurants          = "get_restaurants"
	ToolGetSpas                 = "get_spas"
	ToolGetMeals                = "get_meals"
	ToolPostClient              = "post_client"
	ToolPutClient               = "put_client"
	ToolDeleteClient            = "delete_client"
	ToolGetClientByID           = "get_client_by_id"
	ToolGetClientBySearch       = "get_client_by_search"
	ToolPostReservation         = "post_reservation"
	ToolPutReservation          = "put_reservation"
	ToolDeleteReservation       = "delete_reservation"
	ToolGetReservationByID      = "get_reservation_by_id_reservation"
	ToolGetReservationsByClient = "get_reservation_by_id_client"
	ToolGetSchema               = "get_schema"
	ToolSearchWeb               = "search_web"
)

// HotelAPI is the subset of the back office client the tools need.
type HotelAPI interface {
	ListRestaurants(ctx context.Context) (json.RawMessage, error)
	ListSpas(ctx context.Context) (json.RawMessage, error)
	ListMeals(ctx context.Context) (json.RawMessage, error)
	Schema(ctx context.Context) (json.RawMessage, error)

	GetClient(ctx context.Context, id int) (json.RawMessage, error)
	SearchClients(ctx context.Context, search string) (json.RawMessage, error)
	CreateClient(ctx context.Context, in hotelapix.Guest) (json.RawMessage, error)
	UpdateClient(ctx context.Context, id int, in hotelapix.Guest) (json.RawMessage, error)
	DeleteClient(ctx context.Context, id int) error

	GetReservation(ctx context.Context, id int) (json.RawMessage, error)
	ListClientReservations(ctx context.Context, clientID int) (json.RawMessage, error)
	CreateReservation(ctx context.Context, in hotelapix.Reservation) (json.RawMessage, error)
	UpdateReservation(ctx context.Context, id int, in hotelapix.Reservation) (json.RawMessage, error)
	DeleteReservation(ctx context.Context, id int) error
}

var _ HotelAPI = (*hotelapix.Client)(nil)

// Catalog is the fixed tool set handed to the agent.
type Catalog struct {
	tools []einotool.BaseTool
	names []string
}

func (c *Catalog) Tools() []einotool.BaseTool {
	return append([]einotool.BaseTool(nil), c.tools...)
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Lookup returns the invokable tool registered under name.
func (c *Catalog) Lookup(name string) (einotool.InvokableTool, bool) {
	for i, n := range c.names {
		if n == name {
			t, ok := c.tools[i].(einotool.InvokableTool)
			return t, ok
		}
	}
	return nil, false
}

// NewCatalog wires every hotel operation plus web search. searcher may be
// nil, in which case search_web is left out.
func NewCatalog(api HotelAPI, searcher contractx.Searcher) (*Catalog, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: hotel api client is required", contractx.ErrValidation)
	}

	tools := []einotool.BaseTool{
		newInvokable(info(ToolGetRestaurants, "Get all restaurants of the hotel.", nil),
			func(ctx context.Context, _ noArgs) (any, error) {
				return readOrNull(api.ListRestaurants(ctx))
			}),
		newInvokable(info(ToolGetSpas, "Get all spas of the hotel.", nil),
			func(ctx context.Context, _ noArgs) (any, error) {
				return readOrNull(api.ListSpas(ctx))
			}),
		newInvokable(info(ToolGetMeals, "Get all meals served by the hotel restaurants.", nil),
			func(ctx context.Context, _ noArgs) (any, error) {
				return readOrNull(api.ListMeals(ctx))
			}),
		newInvokable(info(ToolPostClient, "Add a new client into the hotel database.", guestParams(false)),
			func(ctx context.Context, in guestArgs) (any, error) {
				return api.CreateClient(ctx, in.guest())
			}),
		newInvokable(info(ToolPutClient, "Change a client in the hotel database.", guestParams(true)),
			func(ctx context.Context, in guestArgs) (any, error) {
				return api.UpdateClient(ctx, in.IDClient, in.guest())
			}),
		newInvokable(info(ToolDeleteClient, "Delete a client from the hotel database.", map[string]*schema.ParameterInfo{
			"id_client": {Type: schema.Integer, Desc: "Client identifier", Required: true},
		}),
			func(ctx context.Context, in guestArgs) (any, error) {
				if err := api.DeleteClient(ctx, in.IDClient); err != nil {
					return nil, err
				}
				return map[string]string{"message": "Client successfully deleted"}, nil
			}),
		newInvokable(info(ToolGetClientByID, "Get information on a client from its unique identifier.", idParams("Client identifier")),
			func(ctx context.Context, in idArgs) (any, error) {
				return readOrNull(api.GetClient(ctx, in.ID))
			}),
		newInvokable(info(ToolGetClientBySearch, "Find clients from details such as their name.", map[string]*schema.ParameterInfo{
			"search": {Type: schema.String, Desc: "Free text matched against client fields", Required: true},
		}),
			func(ctx context.Context, in searchArgs) (any, error) {
				return readOrNull(api.SearchClients(ctx, in.Search))
			}),
		newInvokable(info(ToolPostReservation, "Post a restaurant reservation into the database.", reservationParams(false)),
			func(ctx context.Context, in reservationArgs) (any, error) {
				return api.CreateReservation(ctx, in.reservation())
			}),
		newInvokable(info(ToolPutReservation, "Put (update) a restaurant reservation in the database.", reservationParams(true)),
			func(ctx context.Context, in reservationArgs) (any, error) {
				return api.UpdateReservation(ctx, in.IDReservation, in.reservation())
			}),
		newInvokable(info(ToolDeleteReservation, "Delete a reservation from the hotel database.", map[string]*schema.ParameterInfo{
			"id_reservation": {Type: schema.Integer, Desc: "Reservation identifier", Required: true},
		}),
			func(ctx context.Context, in reservationArgs) (any, error) {
				if err := api.DeleteReservation(ctx, in.IDReservation); err != nil {
					return nil, err
				}
				return map[string]string{"message": "Reservation successfully deleted"}, nil
			}),
		newInvokable(info(ToolGetReservationByID, "Get information on a reservation from its identifier.", idParams("Reservation identifier")),
			func(ctx context.Context, in idArgs) (any, error) {
				return readOrNull(api.GetReservation(ctx, in.ID))
			}),
		newInvokable(info(ToolGetReservationsByClient, "Get the reservations of a client from the client identifier.", idParams("Client identifier")),
			func(ctx context.Context, in idArgs) (any, error) {
				return readOrNull(api.ListClientReservations(ctx, in.ID))
			}),
		newInvokable(info(ToolGetSchema, "Get the OpenAPI 3 schema of the hotel API.", nil),
			func(ctx context.Context, _ noArgs) (any, error) {
				return readOrNull(api.Schema(ctx))
			}),
	}

	if searcher != nil {
		tools = append(tools, newInvokable(info(ToolSearchWeb, "Search on the web. Summarize what you found in one line.", map[string]*schema.ParameterInfo{
			"search": {Type: schema.String, Desc: "Search query", Required: true},
		}),
			func(ctx context.Context, in searchArgs) (any, error) {
				return searcher.Search(ctx, in.Search)
			}))
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		ti, err := t.Info(context.Background())
		if err != nil {
			return nil, fmt.Errorf("%w: read tool info: %v", contractx.ErrToolCall, err)
		}
		names = append(names, ti.Name)
	}

	return &Catalog{tools: tools, names: names}, nil
}

// readOrNull turns a 404 into a JSON null, which is what the model used to
// receive for lookups that found nothing.
func readOrNull(out json.RawMessage, err error) (any, error) {
	if err != nil {
		if hotelapix.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func info(name, desc string, params map[string]*schema.ParameterInfo) *schema.ToolInfo {
	ti := &schema.ToolInfo{Name: name, Desc: desc}
	if len(params) > 0 {
		ti.ParamsOneOf = schema.NewParamsOneOfByParams(params)
	}
	return ti
}

func idParams(desc string) map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"id": {Type: schema.Integer, Desc: desc, Required: true},
	}
}

func guestParams(withID bool) map[string]*schema.ParameterInfo {
	params := map[string]*schema.ParameterInfo{
		"name_client":      {Type: schema.String, Desc: "Full name of the client", Required: true},
		"phone_number":     {Type: schema.String, Desc: "Phone number", Required: true},
		"room_number":      {Type: schema.String, Desc: "Room number", Required: true},
		"special_requests": {Type: schema.String, Desc: "Special requests, empty when none"},
	}
	if withID {
		params["id_client"] = &schema.ParameterInfo{Type: schema.Integer, Desc: "Client identifier", Required: true}
	}
	return params
}

func reservationParams(withID bool) map[string]*schema.ParameterInfo {
	params := map[string]*schema.ParameterInfo{
		"id_client":        {Type: schema.Integer, Desc: "Client identifier", Required: true},
		"id_restaurant":    {Type: schema.Integer, Desc: "Restaurant identifier", Required: true},
		"date":             {Type: schema.String, Desc: "Reservation date, YYYY-MM-DD", Required: true},
		"id_meal":          {Type: schema.String, Desc: "Meal identifier", Required: true},
		"number_of_guests": {Type: schema.Integer, Desc: "Number of guests", Required: true},
		"special_requests": {Type: schema.String, Desc: "Special requests, empty when none"},
	}
	if withID {
		params["id_reservation"] = &schema.ParameterInfo{Type: schema.Integer, Desc: "Reservation identifier", Required: true}
	}
	return params
}

type noArgs struct{}

type idArgs struct {
	ID int `json:"id"`
}

type searchArgs struct {
	Search string `json:"search"`
}

type guestArgs struct {
	IDClient        int    `json:"id_client"`
	NameClient      string `json:"name_client"`
	PhoneNumber     string `json:"phone_number"`
	RoomNumber      string `json:"room_number"`
	SpecialRequests string `json:"special_requests"`
}

func (a guestArgs) guest() hotelapix.Guest {
	return hotelapix.Guest{
		Name:            strings.TrimSpace(a.NameClient),
		PhoneNumber:     strings.TrimSpace(a.PhoneNumber),
		RoomNumber:      strings.TrimSpace(a.RoomNumber),
		SpecialRequests: a.SpecialRequests,
	}
}

type reservationArgs struct {
	IDReservation   int    `json:"id_reservation"`
	IDClient        int    `json:"id_client"`
	IDRestaurant    int    `json:"id_restaurant"`
	Date            string `json:"date"`
	IDMeal          string `json:"id_meal"`
	NumberOfGuests  int    `json:"number_of_guests"`
	SpecialRequests string `json:"special_requests"`
}

func (a reservationArgs) reservation() hotelapix.Reservation {
	return hotelapix.Reservation{
		Client:          a.IDClient,
		Restaurant:      a.IDRestaurant,
		Date:            strings.TrimSpace(a.Date),
		Meal:            strings.TrimSpace(a.IDMeal),
		NumberOfGuests:  a.NumberOfGuests,
		SpecialRequests: a.SpecialRequests,
	}
}
