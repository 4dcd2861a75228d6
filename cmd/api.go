package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// authedAPI returns the API client carrying the session's bearer token.
func (r *Runner) authedAPI() (*services.APIService, error) {
	session, err := r.authSession()
	if err != nil {
		return nil, err
	}
	return r.api.WithTokenSource(session), nil
}

// APIGet makes a direct GET request to the bookshelf API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	api, err := r.authedAPI()
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}

	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a direct POST request to the bookshelf API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiSend(ctx, cmd, http.MethodPost)
}

// APIPut makes a direct PUT request to the bookshelf API
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiSend(ctx, cmd, http.MethodPut)
}

// APIPatch makes a direct PATCH request to the bookshelf API
func (r *Runner) APIPatch(ctx context.Context, cmd *cli.Command) error {
	return r.apiSend(ctx, cmd, http.MethodPatch)
}

// APIDelete makes a direct DELETE request to the bookshelf API
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	api, err := r.authedAPI()
	if err != nil {
		return err
	}

	r.logger.Info("DELETE request", "path", path)

	resp, err := api.Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if len(resp.Body) == 0 {
		return r.writePlain("deleted %s\n", path)
	}

	return r.writeResponse(resp, cmd.Bool("pretty"))
}

// apiSend validates the --data body and sends it with method.
func (r *Runner) apiSend(ctx context.Context, cmd *cli.Command, method string) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	api, err := r.authedAPI()
	if err != nil {
		return err
	}

	r.logger.Info(method+" request", "path", path)

	var resp *services.APIResponse
	switch method {
	case http.MethodPut:
		resp, err = api.Put(ctx, path, []byte(data))
	case http.MethodPatch:
		resp, err = api.Patch(ctx, path, []byte(data))
	default:
		resp, err = api.Post(ctx, path, []byte(data))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return err
	}

	return r.writeResponse(resp, true)
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return r.writePlain("\n")
}
