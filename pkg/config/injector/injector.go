package injector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.REDIS_ADDR}, ${ssm./app/table}, ${secret.redis#password}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Injector resolve os placeholders ${...} em todas as strings de uma struct
// de configuração. Os clientes AWS são criados no primeiro uso, se não
// fornecidos.
type Injector struct {
	mu      sync.Mutex
	ssm     SSMClient
	secrets SecretsClient
	awsCfg  func(ctx context.Context) (aws.Config, error)
}

type Option func(*Injector)

func WithSSM(c SSMClient) Option {
	return func(i *Injector) { i.ssm = c }
}

func WithSecrets(c SecretsClient) Option {
	return func(i *Injector) { i.secrets = c }
}

func New(opts ...Option) *Injector {
	i := &Injector{
		awsCfg: func(ctx context.Context) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx)
		},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject percorre target (ponteiro não nil) substituindo placeholders em
// strings, slices de string e maps com chave string.
func (i *Injector) Inject(ctx context.Context, target interface{}) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("injector: target must be a non-nil pointer")
	}
	return i.walk(ctx, v.Elem())
}

func (i *Injector) walk(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if !v.Type().Field(k).IsExported() {
				continue
			}
			if err := i.walk(ctx, v.Field(k)); err != nil {
				return fmt.Errorf("%s: %w", v.Type().Field(k).Name, err)
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		out, err := i.interpolate(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(out)

	case reflect.Ptr:
		if !v.IsNil() {
			return i.walk(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.walk(ctx, v.Index(j)); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			elem := iter.Value()
			if elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			if !elem.IsValid() || elem.Kind() != reflect.String {
				continue
			}
			out, err := i.interpolate(ctx, elem.String())
			if err != nil {
				return err
			}
			v.SetMapIndex(iter.Key(), reflect.ValueOf(out).Convert(v.Type().Elem()))
		}
	}
	return nil
}

// interpolate realiza a substituição baseada em Regex
func (i *Injector) interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var firstErr error
	out := pattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := pattern.FindStringSubmatch(match)
		val, err := i.resolve(ctx, parts[1], parts[2])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return match
		}
		return val
	})
	return out, firstErr
}

func (i *Injector) resolve(ctx context.Context, source, key string) (string, error) {
	switch source {
	case "env":
		return os.Getenv(key), nil
	case "ssm":
		client, err := i.ssmClient(ctx)
		if err != nil {
			return "", err
		}
		return getParameter(ctx, client, key)
	case "secret":
		client, err := i.secretsClient(ctx)
		if err != nil {
			return "", err
		}
		id, field, _ := strings.Cut(key, "#")
		return getSecret(ctx, client, id, field)
	}
	return "", fmt.Errorf("injector: unknown source %q", source)
}

func (i *Injector) ssmClient(ctx context.Context) (SSMClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ssm == nil {
		cfg, err := i.awsCfg(ctx)
		if err != nil {
			return nil, fmt.Errorf("injector: aws config: %w", err)
		}
		i.ssm = ssm.NewFromConfig(cfg)
	}
	return i.ssm, nil
}

func (i *Injector) secretsClient(ctx context.Context) (SecretsClient, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.secrets == nil {
		cfg, err := i.awsCfg(ctx)
		if err != nil {
			return nil, fmt.Errorf("injector: aws config: %w", err)
		}
		i.secrets = secretsmanager.NewFromConfig(cfg)
	}
	return i.secrets, nil
}

func getParameter(ctx context.Context, client SSMClient, path string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("injector: ssm GetParameter %s: %w", path, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("injector: ssm parameter %s has no value", path)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// getSecret retorna o segredo, ou um campo dele quando o segredo é um
// objeto JSON e field foi informado.
func getSecret(ctx context.Context, client SecretsClient, id, field string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("injector: secretsmanager %s: %w", id, err)
	}
	val := aws.ToString(out.SecretString)
	if field == "" {
		return val, nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("injector: secret %s is not a JSON object", id)
	}
	fv, ok := data[field]
	if !ok {
		return "", fmt.Errorf("injector: secret %s has no field %q", id, field)
	}
	return fmt.Sprintf("%v", fv), nil
}
