package commu

const nearbyNoticesQuery = `query NearbyNotices($distance: Int!, $lat: Float!, $long: Float!, $first: Int!, $page: Int!) {
  noticesWhereDistance(distance: $distance, lat: $lat, long: $long, first: $first, page: $page) {
    paginatorInfo {
      count
      total
      currentPage
      lastPage
      perPage
      hasMorePages
    }
    data {
      id
      title
      description
      type
      side
      created_at
      expires_at
      position {
        latitude
        longitude
      }
      categories {
        main {
          key
        }
        sub {
          key
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables queryVariables `json:"variables"`
}

type queryVariables struct {
	Distance int     `json:"distance"`
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	First    int     `json:"first"`
	Page     int     `json:"page"`
}
